package csvinfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/nao1215/csvinfer/domain/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer infers column types. It holds only configuration, so one Analyzer can run
// any number of analyses concurrently. Create one with NewBuilder or NewAnalyzer.
type Analyzer struct {
	sampling      model.SamplingPolicy
	resolve       model.ResolvePolicy
	logger        *zap.Logger
	progress      ProgressReporter
	memoryLimit   *MemoryLimit
	reservoirSeed uint64
	concurrency   int
	validator     *validator
}

// NewAnalyzer returns an analyzer with default settings
func NewAnalyzer() *Analyzer {
	analyzer, err := NewBuilder().Build()
	if err != nil {
		// The defaults are always valid
		panic(err)
	}
	return analyzer
}

// AnalyzeFile analyzes a file with default settings
func AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	return NewAnalyzer().AnalyzeFile(ctx, path)
}

// Analyze analyzes a source with default settings
func Analyze(ctx context.Context, src Source) (*Result, error) {
	return NewAnalyzer().Analyze(ctx, src)
}

// AnalyzeFile validates path and analyzes the file it names
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if err := a.validator.validatePath(path); err != nil {
		return nil, err
	}
	return a.Analyze(ctx, NewFileSource(path))
}

// AnalyzeFiles analyzes files concurrently, at most Concurrency at a time.
// Directories are expanded to the supported files they contain. Results are returned in
// input order; the first failure cancels the remaining analyses.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]*Result, error) {
	collected, err := a.validator.collectPaths(paths)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(collected))
	for i, path := range collected {
		sources[i] = NewFileSource(path)
	}
	return a.AnalyzeSources(ctx, sources)
}

// AnalyzeFS analyzes every supported file in fsys, for example an embed.FS
func (a *Analyzer) AnalyzeFS(ctx context.Context, fsys fs.FS) ([]*Result, error) {
	sources, err := collectFSSources(fsys)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSources(ctx, sources)
}

// AnalyzeSources analyzes sources concurrently, at most Concurrency at a time.
// Results are returned in input order; the first failure cancels the remaining analyses.
func (a *Analyzer) AnalyzeSources(ctx context.Context, sources []Source) ([]*Result, error) {
	results := make([]*Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			result, err := a.Analyze(gctx, src)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze runs the two-pass analysis: the first pass reads the header and counts rows,
// the second replays the source and feeds the sampled rows to per-column statistics.
//
// A cancelled context stops the run at the next row and returns an error that matches both
// ErrContextCancelled and the context error; no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	run := a.newRun(src.Name())

	if err := a.validator.validateFileType(src.Name(), src.FileType()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(err)
	}

	run.report(StageStarted, progressStarted, 0, 0, "starting analysis")
	a.logger.Info("analysis started",
		zap.String("source", src.Name()),
		zap.Stringer("format", src.FileType()),
	)

	header, totalRows, err := a.countPass(ctx, src, run)
	if err != nil {
		return nil, err
	}
	run.report(StageCounted, progressCounted, 0, totalRows, fmt.Sprintf("counted %d rows", totalRows))

	plan, err := model.NewSamplingPlan(totalRows, a.sampling)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	stats, tally, err := a.samplePass(ctx, src, header, plan, run)
	if err != nil {
		return nil, err
	}

	run.report(StageResolving, progressResolving, tally.rows, totalRows, "resolving column types")
	columns := model.ResolveAll(stats, a.resolve)

	strategy := StrategyFull
	if plan.Sampled() {
		strategy = StrategySampled
	}

	result := &Result{
		Source:           src.Name(),
		Format:           src.FileType().String(),
		Columns:          columns,
		TotalRows:        totalRows,
		AnalyzedRows:     tally.analyzed,
		MalformedRows:    tally.malformed,
		SamplingInterval: plan.Interval(),
		Strategy:         strategy,
		Duration:         time.Since(start),
	}
	a.finish(run, result)
	return result, nil
}

// AnalyzeStream analyzes a stream that can only be read once. Instead of counting and
// replaying, it keeps a uniform random reservoir of MaxRowsToAnalyze rows, seeded with the
// reservoir seed, and analyzes the reservoir when the stream ends. The result reports
// StrategyReservoir. r must already be decompressed.
func (a *Analyzer) AnalyzeStream(ctx context.Context, r io.Reader, fileType FileType, name string) (*Result, error) {
	start := time.Now()
	run := a.newRun(name)

	if err := a.validator.validateFileType(name, fileType); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(err)
	}

	run.report(StageStarted, progressStarted, 0, 0, "starting analysis")
	a.logger.Info("stream analysis started",
		zap.String("source", name),
		zap.Stringer("format", fileType),
		zap.Uint64("seed", a.reservoirSeed),
	)

	reader, err := openTableReader(ctx, r, fileType, a.memoryLimit)
	if err != nil {
		return nil, NewErrorContext("read header", name).Error(err)
	}
	defer reader.Close() //nolint:errcheck // read-only tokenizer
	run.report(StageHeader, progressHeader, 0, 0, fmt.Sprintf("read %d columns", len(reader.Header())))

	reservoir, err := model.NewReservoir(int(a.sampling.MaxRowsToAnalyze), a.reservoirSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	tally, err := a.forEachRow(ctx, reader, run, 0, func(_ int64, record model.Record) bool {
		reservoir.Offer(record)
		return true
	})
	if err != nil {
		return nil, err
	}

	stats := model.NewColumnStatsList(reader.Header())
	for _, record := range reservoir.Rows() {
		model.ObserveRecord(stats, record)
	}

	run.report(StageResolving, progressResolving, tally.rows, tally.rows, "resolving column types")
	result := &Result{
		Source:        name,
		Format:        fileType.String(),
		Columns:       model.ResolveAll(stats, a.resolve),
		TotalRows:     tally.rows,
		AnalyzedRows:  int64(reservoir.Len()),
		MalformedRows: tally.malformed,
		Strategy:      StrategyReservoir,
		Duration:      time.Since(start),
	}
	a.finish(run, result)
	return result, nil
}

// countPass reads the header and counts the data rows
func (a *Analyzer) countPass(ctx context.Context, src Source, run *runProgress) (model.Header, int64, error) {
	ec := NewErrorContext("count rows", src.Name())

	stream, err := src.Open()
	if err != nil {
		return nil, 0, ec.Error(err)
	}
	defer stream.Close() //nolint:errcheck // read-only stream

	// Delimited text is counted by line terminators as the bytes go by
	var lines lineCounter
	input := io.Reader(stream)
	if src.FileType().isDelimited() {
		input = io.TeeReader(stream, &lines)
	}

	reader, err := openTableReader(ctx, input, src.FileType(), a.memoryLimit)
	if err != nil {
		return nil, 0, ec.Error(err)
	}
	defer reader.Close() //nolint:errcheck // read-only tokenizer

	header := reader.Header()
	run.report(StageHeader, progressHeader, 0, 0, fmt.Sprintf("read %d columns", len(header)))

	switch {
	case src.FileType().isDelimited():
		if err := drain(ctx, input); err != nil {
			return nil, 0, ec.Error(err)
		}
		return header, lines.dataRows(), nil

	default:
		if counter, ok := reader.(rowCounter); ok {
			return header, counter.RowCount(), nil
		}
		var total int64
		for {
			if err := ctx.Err(); err != nil {
				return nil, 0, cancelledError(err)
			}
			_, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return header, total, nil
			}
			if err != nil && !errors.Is(err, errMalformedRow) {
				return nil, 0, ec.Error(err)
			}
			total++
		}
	}
}

// samplePass replays the source and accumulates the rows the plan includes
func (a *Analyzer) samplePass(
	ctx context.Context,
	src Source,
	header model.Header,
	plan model.SamplingPlan,
	run *runProgress,
) ([]*model.ColumnStats, rowTally, error) {
	ec := NewErrorContext("sample rows", src.Name())

	stream, err := src.Open()
	if err != nil {
		return nil, rowTally{}, ec.Error(err)
	}
	defer stream.Close() //nolint:errcheck // read-only stream

	reader, err := openTableReader(ctx, stream, src.FileType(), a.memoryLimit)
	if err != nil {
		return nil, rowTally{}, ec.Error(err)
	}
	defer reader.Close() //nolint:errcheck // read-only tokenizer

	if !reader.Header().Equal(header) {
		return nil, rowTally{}, ec.WithDetails("header changed between passes").Error(ErrNotResettable)
	}

	stats := model.NewColumnStatsList(header)
	var analyzed int64
	tally, err := a.forEachRow(ctx, reader, run, plan.TotalRows(), func(index int64, record model.Record) bool {
		if plan.Include(index) {
			model.ObserveRecord(stats, record)
			analyzed++
		}
		return analyzed < plan.Cap()
	})
	if err != nil {
		return nil, rowTally{}, err
	}
	tally.analyzed = analyzed
	return stats, tally, nil
}

// rowTally summarizes a pass over the data rows
type rowTally struct {
	rows      int64 // data rows read, malformed ones included
	malformed int64
	analyzed  int64
}

// forEachRow feeds every well-formed data row to fn with its 1-based index. Malformed rows
// consume an index but are skipped. fn returns false to stop early. The context is checked
// before every row and the memory limit every memoryCheckInterval rows.
func (a *Analyzer) forEachRow(
	ctx context.Context,
	reader tableReader,
	run *runProgress,
	totalRows int64,
	fn func(index int64, record model.Record) bool,
) (rowTally, error) {
	var tally rowTally
	for {
		if err := ctx.Err(); err != nil {
			a.logger.Info("analysis cancelled",
				zap.String("source", run.source),
				zap.Int64("rows_read", tally.rows),
			)
			return rowTally{}, cancelledError(err)
		}

		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return tally, nil
		}
		tally.rows++

		if err != nil {
			if !errors.Is(err, errMalformedRow) {
				return rowTally{}, NewErrorContext("read row", run.source).WithRow(tally.rows).Error(err)
			}
			tally.malformed++
			a.logger.Debug("skipping malformed row",
				zap.String("source", run.source),
				zap.Int64("row", tally.rows),
				zap.Error(err),
			)
			continue
		}

		if tally.rows%progressInterval == 0 {
			run.report(StageAnalyzing, analyzingPercent(tally.rows, totalRows), tally.rows, totalRows, "analyzing rows")
		}
		if tally.rows%memoryCheckInterval == 0 {
			if err := a.checkMemory(run, tally.rows); err != nil {
				return rowTally{}, err
			}
		}

		if !fn(tally.rows, record) {
			return tally, nil
		}
	}
}

// checkMemory stops the run when the heap reaches the limit and warns once per run
// when it crosses the warning threshold
func (a *Analyzer) checkMemory(run *runProgress, row int64) error {
	info, err := a.memoryLimit.check("row analysis")
	if err != nil {
		return NewErrorContext("analyze", run.source).WithRow(row).Error(err)
	}
	if info.Status == MemoryStatusWarning && !run.memoryWarned {
		run.memoryWarned = true
		a.logger.Warn("memory usage high",
			zap.String("source", run.source),
			zap.Int64("row", row),
			zap.Int64("heap_mb", info.CurrentMB),
			zap.Int64("limit_mb", info.LimitMB),
			zap.Float64("usage", info.Usage),
		)
	}
	return nil
}

// finish reports completion and logs the summary
func (a *Analyzer) finish(run *runProgress, result *Result) {
	run.report(StageDone, progressDone, result.TotalRows, result.TotalRows, "analysis complete")
	a.logger.Info("analysis finished",
		zap.String("source", result.Source),
		zap.String("strategy", string(result.Strategy)),
		zap.Int("columns", len(result.Columns)),
		zap.Int64("total_rows", result.TotalRows),
		zap.Int64("analyzed_rows", result.AnalyzedRows),
		zap.Int64("malformed_rows", result.MalformedRows),
		zap.Duration("duration", result.Duration),
	)
}

// runProgress carries the per-run state: the source stamp for updates and the memory warning flag
type runProgress struct {
	source       string
	reporter     ProgressReporter
	memoryWarned bool
}

func (a *Analyzer) newRun(source string) *runProgress {
	return &runProgress{source: source, reporter: a.progress}
}

func (r *runProgress) report(stage Stage, percent int, rows, total int64, message string) {
	r.reporter.ReportProgress(ProgressUpdate{
		Source:        r.source,
		Stage:         stage,
		Percent:       percent,
		RowsProcessed: rows,
		TotalRows:     total,
		Message:       message,
	})
}
