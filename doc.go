// Package csvinfer infers a column schema from CSV, TSV, Excel (XLSX) and Parquet files.
//
// For every column csvinfer picks the most specific scalar type that consistently describes
// its values (bool, int32, int64, decimal, float64, datetime, guid or string), together with a
// confidence score and a nullability flag. Memory stays bounded regardless of file size: the
// input is read twice, once to count rows and once to analyze a deterministic sample of them.
//
// # Features
//
//   - CSV, TSV, XLSX (first sheet) and Parquet input
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Deterministic head, stride and tail sampling above a configurable row ceiling
//   - Single-pass reservoir sampling for streams that cannot be read twice
//   - Progress reporting through an observer interface or a bounded channel
//   - Schema rendering as a Go struct, a SQLite CREATE TABLE statement or an Arrow schema
//
// # Basic Usage
//
//	result, err := csvinfer.AnalyzeFile(ctx, "data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, col := range result.Columns {
//	    fmt.Println(col.Name, col.Type, col.Nullable, col.Confidence)
//	}
//
// # Advanced Usage
//
// Use the Builder to tune sampling and to attach a logger or progress reporter:
//
//	analyzer, err := csvinfer.NewBuilder().
//	    WithMaxRowsToAnalyze(50000).
//	    WithConfidenceThreshold(0.9).
//	    WithLogger(logger).
//	    WithProgress(csvinfer.ProgressFunc(func(u csvinfer.ProgressUpdate) {
//	        fmt.Printf("%d%% %s\n", u.Percent, u.Stage)
//	    })).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := analyzer.Analyze(ctx, csvinfer.NewFileSource("large.csv.zst"))
//
// # Sampling
//
// Files with at most MaxRowsToAnalyze data rows are analyzed in full. Larger files are sampled:
// the first HeadRows and last TailRows rows are always analyzed and every interval-th row in
// between competes for the remaining budget, where interval is floor(totalRows/MaxRowsToAnalyze).
// The analyzed row count never exceeds MaxRowsToAnalyze.
//
// # Type Resolution
//
// Each non-empty value is probed against every candidate type. A column is typed with the
// candidate that has the highest success rate, earlier candidates winning ties. Since every
// value parses as string, a typed result normally needs every value to parse; enable
// WithTolerateOutliers to let a candidate win at or above the confidence threshold instead.
// Columns whose values are all empty are nullable strings with zero confidence.
package csvinfer
