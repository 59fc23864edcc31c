package model

import (
	"errors"
	"fmt"
)

// Sampling defaults
const (
	// DefaultMaxRowsToAnalyze is the default ceiling on analyzed rows
	DefaultMaxRowsToAnalyze = 10000
	// DefaultHeadRows is the number of leading rows always analyzed when sampling
	DefaultHeadRows = 5000
	// DefaultTailRows is the number of trailing rows always analyzed when sampling
	DefaultTailRows = 1000
)

// ErrInvalidSamplingPolicy is returned when a SamplingPolicy cannot be used
var ErrInvalidSamplingPolicy = errors.New("invalid sampling policy")

// SamplingPolicy holds the tuning values of the row sampler
type SamplingPolicy struct {
	// MaxRowsToAnalyze is the ceiling on analyzed rows; must be positive
	MaxRowsToAnalyze int64
	// HeadRows is the number of leading rows always analyzed when sampling
	HeadRows int64
	// TailRows is the number of trailing rows always analyzed when sampling
	TailRows int64
}

// NewSamplingPolicy returns the default policy
func NewSamplingPolicy() SamplingPolicy {
	return SamplingPolicy{
		MaxRowsToAnalyze: DefaultMaxRowsToAnalyze,
		HeadRows:         DefaultHeadRows,
		TailRows:         DefaultTailRows,
	}
}

// Validate checks the policy values. A non-positive ceiling is rejected rather than
// clamped: a ceiling of zero would infer every column from no data.
func (p SamplingPolicy) Validate() error {
	if p.MaxRowsToAnalyze <= 0 {
		return fmt.Errorf("%w: max rows to analyze must be positive, got %d", ErrInvalidSamplingPolicy, p.MaxRowsToAnalyze)
	}
	if p.HeadRows < 0 {
		return fmt.Errorf("%w: head rows must not be negative, got %d", ErrInvalidSamplingPolicy, p.HeadRows)
	}
	if p.TailRows < 0 {
		return fmt.Errorf("%w: tail rows must not be negative, got %d", ErrInvalidSamplingPolicy, p.TailRows)
	}
	return nil
}

// SamplingPlan decides, for a 1-based row index, whether the row is analyzed.
//
// When the file fits under the ceiling every row is analyzed. Otherwise a row qualifies when
// it is one of the first head rows, one of the last tail rows, or a multiple of the sampling
// interval floor(totalRows/MaxRowsToAnalyze). Stride rows share whatever budget the head and
// tail leave under the ceiling and are thinned evenly across the middle of the file, so the
// analyzed set never exceeds the ceiling and always covers both ends.
//
// A plan is immutable and answers Include in constant time.
type SamplingPlan struct {
	totalRows  int64
	maxRows    int64
	head       int64
	tail       int64
	interval   int64
	sampled    bool
	budget     int64 // stride rows allowed between head and tail
	candidates int64 // stride rows available between head and tail
	firstK     int64 // stride ordinal of the last multiple inside the head
}

// NewSamplingPlan derives a plan from the total row count
func NewSamplingPlan(totalRows int64, policy SamplingPolicy) (SamplingPlan, error) {
	if err := policy.Validate(); err != nil {
		return SamplingPlan{}, err
	}
	if totalRows < 0 {
		return SamplingPlan{}, fmt.Errorf("%w: total rows must not be negative, got %d", ErrInvalidSamplingPolicy, totalRows)
	}

	plan := SamplingPlan{
		totalRows: totalRows,
		maxRows:   policy.MaxRowsToAnalyze,
		interval:  1,
	}
	if totalRows <= policy.MaxRowsToAnalyze {
		return plan, nil
	}

	plan.sampled = true
	plan.interval = max(1, totalRows/policy.MaxRowsToAnalyze)

	head, tail := policy.HeadRows, policy.TailRows
	if head+tail > plan.maxRows {
		// Keep the ends in proportion but never let them alone exceed the ceiling
		head = plan.maxRows * head / (head + tail)
		tail = plan.maxRows - head
	}
	plan.head = head
	plan.tail = tail
	plan.budget = plan.maxRows - head - tail

	plan.firstK = head / plan.interval
	lastK := (totalRows - tail) / plan.interval
	plan.candidates = max(0, lastK-plan.firstK)

	return plan, nil
}

// TotalRows returns the row count the plan was derived from
func (p SamplingPlan) TotalRows() int64 {
	return p.totalRows
}

// Sampled reports whether the plan skips any row
func (p SamplingPlan) Sampled() bool {
	return p.sampled
}

// Interval returns the stride of the sample (1 when not sampling)
func (p SamplingPlan) Interval() int64 {
	return p.interval
}

// Cap returns the maximum number of rows the plan will include
func (p SamplingPlan) Cap() int64 {
	return p.maxRows
}

// HeadRows returns the number of leading rows always included when sampling
func (p SamplingPlan) HeadRows() int64 {
	return p.head
}

// TailRows returns the number of trailing rows always included when sampling
func (p SamplingPlan) TailRows() int64 {
	return p.tail
}

// ExpectedRows returns how many rows Include accepts over 1..TotalRows
func (p SamplingPlan) ExpectedRows() int64 {
	if !p.sampled {
		return p.totalRows
	}
	return p.head + p.tail + min(p.budget, p.candidates)
}

// MatchesRule reports whether row i satisfies the head, stride or tail rule,
// ignoring the ceiling. Include implies MatchesRule.
func (p SamplingPlan) MatchesRule(i int64) bool {
	if i < 1 {
		return false
	}
	if !p.sampled {
		return true
	}
	return i <= p.head || i%p.interval == 0 || i > p.totalRows-p.tail
}

// Include reports whether row i (1-based) is analyzed
func (p SamplingPlan) Include(i int64) bool {
	if i < 1 {
		return false
	}
	if !p.sampled {
		return true
	}
	if i <= p.head || i > p.totalRows-p.tail {
		return true
	}
	if i%p.interval != 0 {
		return false
	}
	return p.keepStride(i/p.interval - p.firstK)
}

// keepStride thins the k-th (1-based) middle stride row so that exactly
// min(budget, candidates) rows are kept, spread evenly
func (p SamplingPlan) keepStride(k int64) bool {
	if k < 1 || k > p.candidates || p.budget <= 0 {
		return false
	}
	if p.candidates <= p.budget {
		return true
	}
	return k*p.budget/p.candidates > (k-1)*p.budget/p.candidates
}
