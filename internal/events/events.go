// Package events defines the callback surface between the automation core
// and whatever presentation shell consumes it (CLI output, log file, UI).
// All emissions are fire-and-forget: the core never depends on a sink
// succeeding and never blocks on it.
package events

import "github.com/lcouto/saprobot/internal/logging"

// Category is the status category shown alongside a status label.
type Category string

const (
	CategoryIdle    Category = "idle"
	CategoryRunning Category = "running"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// Sink receives progress, status and log events from a run.
type Sink interface {
	// Progress reports overall run progress in percent, 0 to 100,
	// non-decreasing within a run.
	Progress(percent int)
	// Status reports a short operator-facing status label with a category.
	Status(label string, category Category)
	// Log reports a human-readable log line.
	Log(line string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Progress(int)            {}
func (NopSink) Status(string, Category) {}
func (NopSink) Log(string)              {}

// LoggerSink forwards events to a logging.Logger. Progress is reported at
// debug level to keep the console readable during long runs.
type LoggerSink struct {
	Logger *logging.Logger
}

// NewLoggerSink creates a sink backed by the given logger.
func NewLoggerSink(logger *logging.Logger) *LoggerSink {
	return &LoggerSink{Logger: logger}
}

func (s *LoggerSink) Progress(percent int) {
	s.Logger.Debug("progresso: %d%%", percent)
}

func (s *LoggerSink) Status(label string, category Category) {
	if category == CategoryError {
		s.Logger.Error("status: %s", label)
		return
	}
	s.Logger.Info("status: %s", label)
}

func (s *LoggerSink) Log(line string) {
	s.Logger.Info("%s", line)
}
