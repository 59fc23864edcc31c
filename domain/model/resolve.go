package model

import (
	"errors"
	"fmt"
)

// DefaultConfidenceThreshold is the minimum success rate a type needs to win over string
const DefaultConfidenceThreshold = 0.95

// ErrInvalidResolvePolicy is returned when a ResolvePolicy cannot be used
var ErrInvalidResolvePolicy = errors.New("invalid resolve policy")

// ResolvePolicy holds the tuning values of the type resolver
type ResolvePolicy struct {
	// ConfidenceThreshold is the minimum success rate (0,1] for a typed result
	ConfidenceThreshold float64
	// TolerateOutliers keeps string out of the ranking. String matches every non-null value,
	// so when it competes a typed result needs a perfect rate. With this set a typed candidate
	// at or above ConfidenceThreshold wins even if a few values (say "N/A") fail to parse.
	TolerateOutliers bool
}

// NewResolvePolicy returns the default policy
func NewResolvePolicy() ResolvePolicy {
	return ResolvePolicy{ConfidenceThreshold: DefaultConfidenceThreshold}
}

// Validate checks the policy values
func (p ResolvePolicy) Validate() error {
	if p.ConfidenceThreshold <= 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v must be in (0, 1]", ErrInvalidResolvePolicy, p.ConfidenceThreshold)
	}
	return nil
}

// ColumnResult is the resolved type information of a single column
type ColumnResult struct {
	// Name is the header text of the column
	Name string `json:"name" yaml:"name"`
	// Type is the inferred type
	Type ColumnType `json:"type" yaml:"type"`
	// Nullable is true when at least one examined value was empty
	Nullable bool `json:"nullable" yaml:"nullable"`
	// Confidence is the share of non-null values that parsed as Type (0.0-1.0)
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// DistinctCount is the number of distinct raw values seen, capped at MaxDistinctValues
	DistinctCount int `json:"distinctCount" yaml:"distinct_count"`
}

// Resolve turns accumulated statistics into exactly one ColumnResult.
//
// A column without data, or whose examined values were all empty, is an optional string
// with zero confidence. Otherwise the type with the strictly highest success rate wins,
// ties going to the earlier type in the hierarchy. A winner below the confidence threshold
// falls back to string with full confidence since every value is representable as text.
//
// String takes part in the ranking unless policy.TolerateOutliers is set.
func Resolve(stats *ColumnStats, policy ResolvePolicy) ColumnResult {
	result := ColumnResult{
		Name:          stats.Name,
		Type:          ColumnTypeString,
		Nullable:      true,
		DistinctCount: stats.DistinctCount(),
	}

	if stats.TotalValues == 0 || stats.NullOrEmptyCount >= stats.TotalValues {
		return result
	}

	nonNull := float64(stats.NonNullCount())
	best := ColumnTypeString
	bestRate := 0.0
	for _, ct := range typeHierarchy {
		if ct == ColumnTypeString && policy.TolerateOutliers {
			continue
		}
		rate := float64(stats.matches[ct]) / nonNull
		if rate > bestRate {
			best = ct
			bestRate = rate
		}
	}

	if bestRate >= policy.ConfidenceThreshold {
		result.Type = best
		result.Confidence = bestRate
	} else {
		result.Type = ColumnTypeString
		result.Confidence = 1.0
	}
	result.Nullable = stats.NullOrEmptyCount > 0

	return result
}

// ResolveAll resolves every column, preserving order
func ResolveAll(stats []*ColumnStats, policy ResolvePolicy) []ColumnResult {
	results := make([]ColumnResult, len(stats))
	for i, s := range stats {
		results[i] = Resolve(s, policy)
	}
	return results
}
