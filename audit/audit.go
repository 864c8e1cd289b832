// Package audit records tool executions to pluggable sinks. The
// default sink logs records; a NATS sink publishes them for external
// trajectory tracking.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Record captures one tool execution: what was called, with what
// parameters (truncated), how it ended, and how long it took.
type Record struct {
	CallID      string    `json:"call_id"`
	ToolName    string    `json:"tool_name"`
	Parameters  string    `json:"parameters"`
	Result      string    `json:"result,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// Sink stores tool call records. Implementations must be safe for
// concurrent use.
type Sink interface {
	Store(ctx context.Context, rec *Record) error
}

// LogSink writes records to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink over the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Store logs the record at info level.
func (s *LogSink) Store(_ context.Context, rec *Record) error {
	s.logger.Info("Tool call",
		slog.String("call_id", rec.CallID),
		slog.String("tool", rec.ToolName),
		slog.String("status", rec.Status),
		slog.Int64("duration_ms", rec.DurationMs),
		slog.String("error", rec.Error))
	return nil
}
