package csvinfer

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Stage names a step of an analysis run
type Stage string

// Analysis stages in the order they are reported
const (
	// StageStarted is reported before the input is opened
	StageStarted Stage = "started"
	// StageHeader is reported once the header row is read and validated
	StageHeader Stage = "header"
	// StageCounted is reported when the counting pass has finished
	StageCounted Stage = "counted"
	// StageAnalyzing is reported periodically while rows are sampled
	StageAnalyzing Stage = "analyzing"
	// StageResolving is reported before column types are resolved
	StageResolving Stage = "resolving"
	// StageDone is reported once the result is complete
	StageDone Stage = "done"
)

// Progress percentages of the fixed stages. Sampling reports between
// progressCounted and progressResolving in proportion to the rows read.
const (
	progressStarted   = 0
	progressHeader    = 5
	progressCounted   = 10
	progressResolving = 90
	progressDone      = 100

	// progressInterval is how many rows pass between two StageAnalyzing updates
	progressInterval = 1000
)

// ProgressUpdate describes how far an analysis has come
type ProgressUpdate struct {
	Source        string
	Stage         Stage
	Percent       int
	RowsProcessed int64
	TotalRows     int64
	Message       string
}

// ProgressReporter receives progress updates. Implementations must return quickly:
// they run on the analysis goroutine and never influence the result.
type ProgressReporter interface {
	ReportProgress(update ProgressUpdate)
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(update ProgressUpdate)

// ReportProgress calls f(update)
func (f ProgressFunc) ReportProgress(update ProgressUpdate) {
	f(update)
}

type nopReporter struct{}

func (nopReporter) ReportProgress(ProgressUpdate) {}

// multiReporter fans an update out to several reporters
type multiReporter []ProgressReporter

func (m multiReporter) ReportProgress(update ProgressUpdate) {
	for _, r := range m {
		r.ReportProgress(update)
	}
}

// ChannelReporter delivers updates over a bounded channel. When the channel is full the
// update is dropped instead of blocking the analysis.
type ChannelReporter struct {
	mu      sync.RWMutex
	ch      chan ProgressUpdate
	closed  bool
	dropped atomic.Int64
}

// NewChannelReporter creates a reporter whose channel holds up to buffer updates
func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{ch: make(chan ProgressUpdate, max(1, buffer))}
}

// ReportProgress implements ProgressReporter
func (c *ChannelReporter) ReportProgress(update ProgressUpdate) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}
	select {
	case c.ch <- update:
	default:
		c.dropped.Add(1)
	}
}

// Updates returns the receive side of the channel
func (c *ChannelReporter) Updates() <-chan ProgressUpdate {
	return c.ch
}

// Dropped returns how many updates were discarded because the channel was full
func (c *ChannelReporter) Dropped() int64 {
	return c.dropped.Load()
}

// Close closes the channel. Later updates are discarded.
func (c *ChannelReporter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// LoggingReporter writes progress updates to a zap logger at debug level
type LoggingReporter struct {
	logger *zap.Logger
}

// NewLoggingReporter creates a reporter that logs every update
func NewLoggingReporter(logger *zap.Logger) *LoggingReporter {
	return &LoggingReporter{logger: logger.Named("progress")}
}

// ReportProgress implements ProgressReporter
func (l *LoggingReporter) ReportProgress(update ProgressUpdate) {
	l.logger.Debug(update.Message,
		zap.String("source", update.Source),
		zap.String("stage", string(update.Stage)),
		zap.Int("percent", update.Percent),
		zap.Int64("rows_processed", update.RowsProcessed),
		zap.Int64("total_rows", update.TotalRows),
	)
}

// analyzingPercent maps sampling progress onto the 10..90 band
func analyzingPercent(rowsProcessed, totalRows int64) int {
	if totalRows <= 0 {
		return progressCounted
	}
	span := progressResolving - progressCounted
	pct := progressCounted + int(rowsProcessed*int64(span)/totalRows)
	return min(progressResolving, max(progressCounted, pct))
}
