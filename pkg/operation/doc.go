// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package operation ties matching, scanning, replacing and backups into one
engine.

	+-----------+     +-----------+
	|  Search   |     |  Replace  |
	+-----+-----+     +-----+-----+
	      |                 |
	+-----+-----+     +-----+-----+     +-----------+
	|   scan    |     |  replace  +---->|  backup   |
	+-----+-----+     +-----+-----+     +-----+-----+
	      |                 |                 |
	      +--------+--------+               Undo
	               |
	         +-----+-----+
	         |   match   |
	         +-----------+

🎯 Purpose:
- Compile a pattern once and hand it to the scanner or the replace transaction
- Give every call its own cancellable context
- Restore the backup tree of the last replace

🔄 Flow:
1. Compile the pattern (a *match.PatternError stops here, nothing is opened)
2. Derive a context that Engine.Cancel can stop
3. Search or replace the files, reporting progress per finished file
4. Undo copies the backup tree back over the base folder

🤝 Interfaces:
- files.FileManager: all file system access
- scan.Opener: where search reads from
- status.Reporter: progress

⚠️ Backups:
There is one backup tree. Every replace wipes it first, so only the most
recent replace can be undone and two replaces must never run at the same
time.

🔍 Example:

	engine, err := operation.New(operation.Options{})
	if err != nil {
		return err
	}
	n, err := engine.Replace(ctx, files, ".", "foo", "bar", match.ModeTextCaseSensitive)
	if err != nil {
		return err
	}
	ok := engine.Undo(ctx, ".")

The OperationRunner wraps the same calls for command line use: in async mode
it watches the context, and when it is cancelled it waits for the running
operation to stop so a replace can put the file it was rewriting back.
*/
package operation
