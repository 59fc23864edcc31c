package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/csvinfer"
	"github.com/nao1215/csvinfer/internal/config"
	"github.com/nao1215/csvinfer/internal/logging"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// stdinName is the argument that selects standard input
const stdinName = "-"

// options are the command-line flags. Only flags given explicitly override the config.
type options struct {
	configPath       string
	maxRows          int64
	format           string
	render           string
	progress         bool
	reservoirSeed    uint64
	tolerateOutliers bool
	threshold        float64
	logLevel         string
	stdinFormat      string
}

func newFlagSet(stderr io.Writer, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("csvinfer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.Int64Var(&opts.maxRows, "max-rows", 0, "maximum number of rows to analyze per file")
	fs.StringVar(&opts.format, "format", "", "report format: table, json or yaml")
	fs.StringVar(&opts.render, "render", "", "also render a schema: go, sqlite or arrow")
	fs.BoolVar(&opts.progress, "progress", false, "print progress to standard error")
	fs.Uint64Var(&opts.reservoirSeed, "reservoir-seed", 0, "seed of the sampler used for standard input")
	fs.BoolVar(&opts.tolerateOutliers, "tolerate-outliers", false, "let a type win when a few values do not parse")
	fs.Float64Var(&opts.threshold, "threshold", 0, "minimum share of values a type must match (0-1]")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&opts.stdinFormat, "stdin-format", "", "format of standard input: csv, tsv, xlsx or parquet")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: csvinfer [flags] FILE|DIR|- ...")
		fmt.Fprintln(stderr, "Infers the column types of CSV, TSV, XLSX and Parquet files, optionally gz, bz2, xz or zst compressed.")
		fmt.Fprintln(stderr, `"-" reads standard input, CSV unless -stdin-format says otherwise.`)
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
		if env, err := config.Usage(); err == nil {
			fmt.Fprintln(stderr)
			fmt.Fprintln(stderr, env)
		}
	}
	return fs
}

// run executes the command and returns the exit code
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(stderr, &opts)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitUsage
	}
	applyFlags(fs, &opts, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitUsage
	}
	stdinType := csvinfer.ParseFileType(cfg.Analysis.StdinFormat)
	if stdinType == csvinfer.FileTypeUnsupported {
		fmt.Fprintf(stderr, "csvinfer: unknown stdin format %q (want csv, tsv, xlsx or parquet)\n", cfg.Analysis.StdinFormat)
		return exitUsage
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitUsage
	}
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

	analyzer, err := newAnalyzer(cfg, logger, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitUsage
	}

	results, err := analyze(ctx, analyzer, fs.Args(), stdin, stdinType)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitError
	}

	if err := writeReport(ctx, stdout, results, cfg.Output); err != nil {
		fmt.Fprintf(stderr, "csvinfer: %v\n", err)
		return exitError
	}
	return exitOK
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(fs *flag.FlagSet, opts *options, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-rows":
			cfg.Analysis.MaxRowsToAnalyze = opts.maxRows
		case "format":
			cfg.Output.Format = opts.format
		case "render":
			cfg.Output.Render = opts.render
		case "progress":
			cfg.Output.Progress = opts.progress
		case "reservoir-seed":
			cfg.Analysis.ReservoirSeed = opts.reservoirSeed
		case "tolerate-outliers":
			cfg.Analysis.TolerateOutliers = opts.tolerateOutliers
		case "threshold":
			cfg.Analysis.ConfidenceThreshold = opts.threshold
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "stdin-format":
			cfg.Analysis.StdinFormat = opts.stdinFormat
		}
	})
}

func newAnalyzer(cfg *config.Config, logger *zap.Logger, stderr io.Writer) (*csvinfer.Analyzer, error) {
	builder := csvinfer.NewBuilder().
		WithMaxRowsToAnalyze(cfg.Analysis.MaxRowsToAnalyze).
		WithHeadRows(cfg.Analysis.HeadRows).
		WithTailRows(cfg.Analysis.TailRows).
		WithConfidenceThreshold(cfg.Analysis.ConfidenceThreshold).
		WithTolerateOutliers(cfg.Analysis.TolerateOutliers).
		WithReservoirSeed(cfg.Analysis.ReservoirSeed).
		WithConcurrency(cfg.Analysis.Concurrency).
		WithMemoryLimit(cfg.Analysis.MemoryLimitMB).
		WithMemoryWarningThreshold(cfg.Analysis.MemoryWarningThreshold).
		WithLogger(logger).
		WithProgress(csvinfer.NewLoggingReporter(logger))

	if cfg.Output.Progress {
		builder = builder.WithProgress(csvinfer.ProgressFunc(func(u csvinfer.ProgressUpdate) {
			fmt.Fprintf(stderr, "%s: %3d%% %s\n", u.Source, u.Percent, u.Message)
		}))
	}
	return builder.Build()
}

// analyze runs the files through AnalyzeFiles and standard input through AnalyzeStream,
// keeping the argument order
func analyze(
	ctx context.Context, analyzer *csvinfer.Analyzer, args []string, stdin io.Reader, stdinType csvinfer.FileType,
) ([]*csvinfer.Result, error) {
	var paths []string
	stdinAt := -1
	for _, arg := range args {
		if arg == stdinName {
			if stdinAt >= 0 {
				return nil, errors.New("standard input can only be read once")
			}
			stdinAt = len(paths)
			continue
		}
		paths = append(paths, arg)
	}

	var results []*csvinfer.Result
	if len(paths) > 0 {
		fileResults, err := analyzer.AnalyzeFiles(ctx, paths)
		if err != nil {
			return nil, err
		}
		results = fileResults
	}

	if stdinAt >= 0 {
		result, err := analyzer.AnalyzeStream(ctx, stdin, stdinType, "stdin")
		if err != nil {
			return nil, err
		}
		// Directories expand to many results, so stdin goes first or last only
		if stdinAt == 0 {
			results = append([]*csvinfer.Result{result}, results...)
		} else {
			results = append(results, result)
		}
	}
	return results, nil
}

// writeReport prints the results and the requested schema renderings
func writeReport(ctx context.Context, w io.Writer, results []*csvinfer.Result, out config.OutputConfig) error {
	switch out.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	default:
		if err := writeTable(w, results); err != nil {
			return err
		}
	}

	for _, result := range results {
		if err := writeSchema(ctx, w, result, out); err != nil {
			return err
		}
	}
	return nil
}

// writeTable prints one aligned table per result
func writeTable(w io.Writer, results []*csvinfer.Result) error {
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s): %d rows, %d analyzed, %d malformed, strategy %s, %s\n",
			result.Source, result.Format, result.TotalRows, result.AnalyzedRows,
			result.MalformedRows, result.Strategy, result.Duration.Round(time.Millisecond))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tNULLABLE\tCONFIDENCE\tDISTINCT")
		for _, col := range result.Columns {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%.1f%%\t%d\n",
				col.Name, col.Type, col.Nullable, col.Confidence*100, col.DistinctCount)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

// writeSchema prints the rendering selected by out.Render, if any.
// SQLite DDL is executed against an in-memory database before it is printed.
func writeSchema(ctx context.Context, w io.Writer, result *csvinfer.Result, out config.OutputConfig) error {
	var (
		text string
		err  error
	)
	switch out.Render {
	case config.RenderGo:
		opts := csvinfer.NewGoStructOptions()
		opts.PackageName = out.PackageName
		opts.TypeName = out.TypeName
		text, err = csvinfer.RenderGoStruct(result, opts)
	case config.RenderSQLite:
		text, err = csvinfer.RenderSQLite(result, "")
		if err == nil {
			err = csvinfer.VerifyDDL(ctx, text)
		}
	case config.RenderArrow:
		schema, schemaErr := csvinfer.ArrowSchema(result)
		if schemaErr == nil {
			text = schema.String() + "\n"
		}
		err = schemaErr
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to render %s schema for %s: %w", out.Render, result.Source, err)
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 40))
	_, err = io.WriteString(w, text)
	return err
}
