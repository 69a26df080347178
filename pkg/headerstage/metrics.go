package headerstage

import (
	"sync/atomic"

	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// Metrics collects staging statistics.
type Metrics interface {
	AddFilesCopied(n int64)
	AddFilesSkipped(n int64)
	AddBytesWritten(n int64)
	LogSummary(msg string)
}

// StageMetrics is the counting implementation of Metrics.
type StageMetrics struct {
	FilesCopied  atomic.Int64
	FilesSkipped atomic.Int64
	BytesWritten atomic.Int64
}

func (m *StageMetrics) AddFilesCopied(n int64)  { m.FilesCopied.Add(n) }
func (m *StageMetrics) AddFilesSkipped(n int64) { m.FilesSkipped.Add(n) }
func (m *StageMetrics) AddBytesWritten(n int64) { m.BytesWritten.Add(n) }

// LogSummary logs the counters as a single record.
func (m *StageMetrics) LogSummary(msg string) {
	plog.Info(msg,
		"filesCopied", m.FilesCopied.Load(),
		"filesSkipped", m.FilesSkipped.Load(),
		"bytesWritten", m.BytesWritten.Load(),
	)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (m *NoopMetrics) AddFilesCopied(n int64)  {}
func (m *NoopMetrics) AddFilesSkipped(n int64) {}
func (m *NoopMetrics) AddBytesWritten(n int64) {}
func (m *NoopMetrics) LogSummary(msg string)   {}

var _ Metrics = (*StageMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
