package csvinfer

import (
	"errors"
	"fmt"

	"github.com/nao1215/csvinfer/domain/model"
	"go.uber.org/zap"
)

const (
	// DefaultConcurrency is the default number of files AnalyzeFiles analyzes at once
	DefaultConcurrency = 4
	// DefaultReservoirSeed seeds the AnalyzeStream reservoir unless WithReservoirSeed is used
	DefaultReservoirSeed = 1
)

// Builder configures an Analyzer.
// Use NewBuilder to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	analyzer, err := csvinfer.NewBuilder().
//		WithMaxRowsToAnalyze(20000).
//		WithConfidenceThreshold(0.9).
//		WithLogger(logger).
//		Build()
//	if err != nil {
//		return err
//	}
//	result, err := analyzer.AnalyzeFile(ctx, "orders.csv.gz")
type Builder struct {
	sampling      model.SamplingPolicy
	resolve       model.ResolvePolicy
	logger        *zap.Logger
	reporters     []ProgressReporter
	memoryLimitMB int64
	memoryWarning float64
	reservoirSeed uint64
	concurrency   int
}

// NewBuilder creates a builder with the default settings: up to 10000 analyzed rows
// (5000 head, 1000 tail), a 0.95 confidence threshold, no logging, no progress
// reporting, reservoir seed 1 and a 512MB memory guard that warns at 80%.
func NewBuilder() *Builder {
	return &Builder{
		sampling:      model.NewSamplingPolicy(),
		resolve:       model.NewResolvePolicy(),
		logger:        zap.NewNop(),
		memoryLimitMB: defaultMemoryLimit,
		memoryWarning: DefaultMemoryWarningThreshold,
		reservoirSeed: DefaultReservoirSeed,
		concurrency:   DefaultConcurrency,
	}
}

// WithMaxRowsToAnalyze sets the ceiling on analyzed rows. Files with at most this
// many data rows are analyzed completely.
func (b *Builder) WithMaxRowsToAnalyze(rows int64) *Builder {
	b.sampling.MaxRowsToAnalyze = rows
	return b
}

// WithHeadRows sets how many leading rows are always analyzed when sampling
func (b *Builder) WithHeadRows(rows int64) *Builder {
	b.sampling.HeadRows = rows
	return b
}

// WithTailRows sets how many trailing rows are always analyzed when sampling
func (b *Builder) WithTailRows(rows int64) *Builder {
	b.sampling.TailRows = rows
	return b
}

// WithConfidenceThreshold sets the minimum success rate a type needs to win over string
func (b *Builder) WithConfidenceThreshold(threshold float64) *Builder {
	b.resolve.ConfidenceThreshold = threshold
	return b
}

// WithTolerateOutliers lets a typed candidate win at or above the confidence threshold
// even when a few values fail to parse. See model.ResolvePolicy.
func (b *Builder) WithTolerateOutliers(tolerate bool) *Builder {
	b.resolve.TolerateOutliers = tolerate
	return b
}

// WithLogger sets the logger. A nil logger disables logging.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
	return b
}

// WithProgress adds a progress reporter. It can be called more than once;
// every reporter receives every update.
func (b *Builder) WithProgress(reporter ProgressReporter) *Builder {
	if reporter != nil {
		b.reporters = append(b.reporters, reporter)
	}
	return b
}

// WithReservoirSeed sets the seed of the reservoir used by AnalyzeStream.
// The same seed over the same stream always yields the same result.
func (b *Builder) WithReservoirSeed(seed uint64) *Builder {
	b.reservoirSeed = seed
	return b
}

// WithConcurrency sets how many files AnalyzeFiles analyzes at once
func (b *Builder) WithConcurrency(n int) *Builder {
	b.concurrency = n
	return b
}

// WithMemoryLimit sets the heap ceiling in megabytes. Zero disables the guard.
func (b *Builder) WithMemoryLimit(limitMB int64) *Builder {
	b.memoryLimitMB = limitMB
	return b
}

// WithMemoryWarningThreshold sets the share (0,1] of the memory limit at which a run
// logs a "memory usage high" warning
func (b *Builder) WithMemoryWarningThreshold(threshold float64) *Builder {
	b.memoryWarning = threshold
	return b
}

// Build validates the settings and returns the analyzer.
// Every validation failure wraps ErrInvalidConfig.
func (b *Builder) Build() (*Analyzer, error) {
	var errs []error
	if err := b.sampling.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := b.resolve.Validate(); err != nil {
		errs = append(errs, err)
	}
	if b.concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", b.concurrency))
	}
	if b.memoryLimitMB < 0 {
		errs = append(errs, fmt.Errorf("memory limit must not be negative, got %dMB", b.memoryLimitMB))
	}
	if b.memoryWarning <= 0 || b.memoryWarning > 1 {
		errs = append(errs, fmt.Errorf("memory warning threshold must be in (0, 1], got %v", b.memoryWarning))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	var progress ProgressReporter = nopReporter{}
	switch len(b.reporters) {
	case 0:
	case 1:
		progress = b.reporters[0]
	default:
		progress = multiReporter(append([]ProgressReporter(nil), b.reporters...))
	}

	var limit *MemoryLimit
	if b.memoryLimitMB > 0 {
		limit = NewMemoryLimit(b.memoryLimitMB)
		limit.SetWarningThreshold(b.memoryWarning)
	}

	return &Analyzer{
		sampling:      b.sampling,
		resolve:       b.resolve,
		logger:        b.logger,
		progress:      progress,
		memoryLimit:   limit,
		reservoirSeed: b.reservoirSeed,
		concurrency:   b.concurrency,
		validator:     newValidator(),
	}, nil
}
