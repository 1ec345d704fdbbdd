/*
Package status carries progress and per-file outcomes from the engine to
whoever is watching.

	+-------------+        +-------------+
	|   Scanner   |        | Transaction |
	+------+------+        +------+------+
	       |                      |
	       +----------+-----------+
	                  |
	          +-------+-------+
	          |   Reporter    |
	          | (ProgressStat)|
	          +-------+-------+
	                  |
	      +-----------+-----------+
	      |           |           |
	+-----+---+  +----+----+  +---+-----+
	|  Func   |  |   Log   |  |  Multi  |
	+---------+  +---------+  +---------+

🎯 Purpose:
- Defines ProgressStatus, the transient "n of m files done" notification
- Defines Reporter, the sink for those notifications
- Formats progress and file outcomes for humans

🔄 Contract:
1. StartOperation is called once with the number of files in the batch
2. UpdateProgress is called exactly once per completed file, in file order
3. FinishOperation is called once when the batch ends, however it ends

🔍 Example:

	reporter := status.ReporterFunc(func(ctx context.Context, p status.ProgressStatus) {
		fmt.Printf("%d/%d\n", p.ProcessedFiles, p.TotalFiles)
	})
*/
package status
