package csvinfer

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
)

const (
	defaultMemoryLimit       = 512       // MB
	maxReasonableMemoryLimit = 64 * 1024 // MB

	// DefaultMemoryWarningThreshold is the share of the limit at which a run logs a warning
	DefaultMemoryWarningThreshold = 0.8

	// memoryCheckInterval is how many rows pass between two heap checks.
	// runtime.ReadMemStats can pause for milliseconds, so it is not called per row.
	memoryCheckInterval = 1000

	bytesPerMB = 1024 * 1024
)

// MemoryLimit guards an analysis against runaway heap growth. Sampling keeps the
// accumulated state bounded, but XLSX input and non-seekable Parquet input are
// buffered whole, and very wide rows can still be large.
//
// A heap at or above the warning threshold is logged once per run; a heap at or above
// the limit stops the run with ErrMemoryLimit. Safe for concurrent use.
type MemoryLimit struct {
	maxMemoryMB      int64
	warningThreshold atomic.Uint64 // math.Float64bits of the 0.0-1.0 threshold
	heapMB           func() int64
}

// NewMemoryLimit creates a limit of maxMemoryMB megabytes.
// Non-positive values select the 512MB default; values above 64GB are capped.
func NewMemoryLimit(maxMemoryMB int64) *MemoryLimit {
	if maxMemoryMB <= 0 {
		maxMemoryMB = defaultMemoryLimit
	}
	maxMemoryMB = min(maxMemoryMB, maxReasonableMemoryLimit)

	ml := &MemoryLimit{maxMemoryMB: maxMemoryMB, heapMB: currentHeapMB}
	ml.warningThreshold.Store(math.Float64bits(DefaultMemoryWarningThreshold))
	return ml
}

// LimitMB returns the configured limit
func (ml *MemoryLimit) LimitMB() int64 {
	return ml.maxMemoryMB
}

// WarningThreshold returns the share of the limit that triggers a warning
func (ml *MemoryLimit) WarningThreshold() float64 {
	return math.Float64frombits(ml.warningThreshold.Load())
}

// SetWarningThreshold sets the warning threshold (0.0-1.0]; other values are ignored
func (ml *MemoryLimit) SetWarningThreshold(threshold float64) {
	if threshold > 0.0 && threshold <= 1.0 {
		ml.warningThreshold.Store(math.Float64bits(threshold))
	}
}

// Snapshot reads the heap once and classifies it
func (ml *MemoryLimit) Snapshot() MemoryInfo {
	currentMB := ml.heapMB()
	return MemoryInfo{
		CurrentMB: currentMB,
		LimitMB:   ml.maxMemoryMB,
		Usage:     float64(currentMB) / float64(ml.maxMemoryMB),
		Status:    ml.statusFor(currentMB),
	}
}

// statusFor classifies a heap size
func (ml *MemoryLimit) statusFor(currentMB int64) MemoryStatus {
	if currentMB >= ml.maxMemoryMB {
		return MemoryStatusExceeded
	}
	if float64(currentMB)/float64(ml.maxMemoryMB) >= ml.WarningThreshold() {
		return MemoryStatusWarning
	}
	return MemoryStatusOK
}

// check takes a snapshot and turns an exceeded limit into an ErrMemoryLimit error.
// A nil limit always reports MemoryStatusOK.
func (ml *MemoryLimit) check(operation string) (MemoryInfo, error) {
	if ml == nil {
		return MemoryInfo{Status: MemoryStatusOK}, nil
	}
	info := ml.Snapshot()
	if info.Status != MemoryStatusExceeded {
		return info, nil
	}
	return info, fmt.Errorf(
		"%w during %s: using %d MB / %d MB (%.1f%%), consider lowering the row ceiling or raising the memory limit",
		ErrMemoryLimit, operation, info.CurrentMB, info.LimitMB, info.Usage*100,
	)
}

// currentHeapMB returns the live heap in MB
func currentHeapMB() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return int64(min(memStats.HeapAlloc/bytesPerMB, math.MaxInt64))
}

// MemoryStatus classifies heap usage against a MemoryLimit
type MemoryStatus int

const (
	// MemoryStatusOK indicates memory usage is within acceptable limits
	MemoryStatusOK MemoryStatus = iota
	// MemoryStatusWarning indicates memory usage is at or above the warning threshold
	MemoryStatusWarning
	// MemoryStatusExceeded indicates memory usage has reached the limit
	MemoryStatusExceeded
)

// String returns string representation of memory status
func (ms MemoryStatus) String() string {
	switch ms {
	case MemoryStatusOK:
		return "OK"
	case MemoryStatusWarning:
		return "WARNING"
	case MemoryStatusExceeded:
		return "EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// MemoryInfo is one reading of the heap against a MemoryLimit
type MemoryInfo struct {
	CurrentMB int64        // Current memory usage in MB
	LimitMB   int64        // Memory limit in MB
	Usage     float64      // Usage share (0.0-1.0)
	Status    MemoryStatus // Current status
}
