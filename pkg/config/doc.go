/*
Package config loads the settings shared by the greprc commands.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Picks a parser by file extension through the Parser registry
- Treats a missing file as "use the defaults"
- Normalizes every field in Validate so the rest of the program can rely on it

🔄 Flow:
1. Load reads the file (or falls back to Default)
2. The registered parser decodes it, rejecting unknown fields
3. Validate parses modes and policies, checks globs and fills defaults

🔍 Example:

	cfg, err := config.Load(ctx, ".greprc.yaml")
	if err != nil {
		return err
	}
	engine, err := operation.New(operation.Options{
		Fold:    cfg.FoldPolicy(),
		Newline: cfg.NewlinePolicy(),
		Backups: backup.New(cfg.BackupDir, nil),
	})

A config file with every field set:

	mode: text-insensitive
	case_folding: unicode
	newline: auto
	backup_dir: /tmp/greprc
	max_line_bytes: 1048576
	include: ["src/**", "*.go", "*.md"]
	exclude: ["vendor/**"]
	log_level: debug
	async: true
*/
package config
