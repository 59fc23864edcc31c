package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ErrInvalidReservoir is returned when a reservoir cannot be created
var ErrInvalidReservoir = errors.New("invalid reservoir")

// Reservoir keeps a uniform random sample of at most capacity records from a stream of
// unknown length. It is the single-pass alternative to SamplingPlan for inputs that
// cannot be read twice. The same seed over the same stream always keeps the same rows.
type Reservoir struct {
	capacity int
	seen     int64
	rows     []Record
	rng      *rand.Rand
}

// NewReservoir creates a reservoir holding at most capacity records
func NewReservoir(capacity int, seed uint64) (*Reservoir, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidReservoir, capacity)
	}
	return &Reservoir{
		capacity: capacity,
		rows:     make([]Record, 0, min(capacity, 1024)),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // sampling, not security
	}, nil
}

// Offer presents the next record of the stream. The record is copied when kept.
func (r *Reservoir) Offer(record Record) {
	r.seen++
	if len(r.rows) < r.capacity {
		r.rows = append(r.rows, slices.Clone(record))
		return
	}
	// Algorithm R: replace a random slot with probability capacity/seen
	if j := r.rng.Int64N(r.seen); j < int64(r.capacity) {
		r.rows[j] = slices.Clone(record)
	}
}

// Seen returns the number of records offered so far
func (r *Reservoir) Seen() int64 {
	return r.seen
}

// Len returns the number of records currently kept
func (r *Reservoir) Len() int {
	return len(r.rows)
}

// Rows returns the kept records. Order is not meaningful.
func (r *Reservoir) Rows() []Record {
	return r.rows
}
