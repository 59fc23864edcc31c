package model

import "strings"

// MaxDistinctValues caps the distinct value set kept per column.
// The set only feeds the diagnostic distinct count, never type inference.
const MaxDistinctValues = 1000

// ColumnStats holds the running statistics of one column during an analysis pass.
// A ColumnStats is owned by a single pass and is not safe for concurrent use.
type ColumnStats struct {
	// Name is the header text of the column
	Name string
	// TotalValues is the number of values examined
	TotalValues int64
	// NullOrEmptyCount is the number of examined values that were empty or whitespace only
	NullOrEmptyCount int64

	distinct map[string]struct{}
	matches  [columnTypeCount]int64
}

// NewColumnStats creates empty statistics for the named column
func NewColumnStats(name string) *ColumnStats {
	return &ColumnStats{
		Name:     name,
		distinct: make(map[string]struct{}),
	}
}

// NewColumnStatsList creates one ColumnStats per header name, in header order
func NewColumnStatsList(header Header) []*ColumnStats {
	stats := make([]*ColumnStats, len(header))
	for i, name := range header {
		stats[i] = NewColumnStats(name)
	}
	return stats
}

// Observe folds one field value into the statistics.
// Empty and whitespace-only values are counted as null and never probed;
// every other value is probed against each candidate type independently.
func (s *ColumnStats) Observe(value string) {
	s.TotalValues++

	if len(s.distinct) < MaxDistinctValues {
		if _, seen := s.distinct[value]; !seen {
			// value may slice a whole decoded record; keep only its own bytes
			s.distinct[strings.Clone(value)] = struct{}{}
		}
	}

	if strings.TrimSpace(value) == "" {
		s.NullOrEmptyCount++
		return
	}

	for _, ct := range typeHierarchy {
		if probes[ct](value) {
			s.matches[ct]++
		}
	}
}

// ObserveRecord feeds one row into per-column statistics.
// Missing trailing fields are observed as empty values and extra fields are ignored,
// so every column sees exactly one value per row.
func ObserveRecord(stats []*ColumnStats, record Record) {
	for i, s := range stats {
		if i < len(record) {
			s.Observe(record[i])
			continue
		}
		s.Observe("")
	}
}

// NonNullCount returns the number of examined values that were not empty
func (s *ColumnStats) NonNullCount() int64 {
	return s.TotalValues - s.NullOrEmptyCount
}

// MatchCount returns how many non-null values parsed as the given type
func (s *ColumnStats) MatchCount(ct ColumnType) int64 {
	if !ct.IsValid() {
		return 0
	}
	return s.matches[ct]
}

// DistinctCount returns the size of the bounded distinct value set
func (s *ColumnStats) DistinctCount() int {
	return len(s.distinct)
}
