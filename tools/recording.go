package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hbg/mcp-flag-sweeper/audit"
	"github.com/hbg/mcp-flag-sweeper/metrics"
)

// MaxRecordedParamsLength is the max length for serialized parameters
// stored in an audit record.
const MaxRecordedParamsLength = 1000

// MaxRecordedResultLength is the max length for result content stored
// in an audit record.
const MaxRecordedResultLength = 2000

// RecordingExecutor wraps an Executor and records each call to an
// audit sink. A nil sink passes calls through without recording.
type RecordingExecutor struct {
	inner  Executor
	sink   audit.Sink
	logger *slog.Logger
}

// NewRecordingExecutor wraps an executor with tool call recording.
func NewRecordingExecutor(inner Executor, sink audit.Sink) *RecordingExecutor {
	return &RecordingExecutor{
		inner:  inner,
		sink:   sink,
		logger: slog.Default(),
	}
}

// Execute runs the underlying executor and records the call.
func (r *RecordingExecutor) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	startedAt := time.Now()
	result, execErr := r.inner.Execute(ctx, call)
	completedAt := time.Now()

	status := "success"
	if execErr != nil || result.Error != "" {
		status = "error"
	}
	metrics.CountToolCall(call.Name, status)

	// Record asynchronously to avoid slowing down tool execution.
	go r.recordCall(call, result, execErr, startedAt, completedAt)

	return result, execErr
}

// ListTools delegates to the inner executor.
func (r *RecordingExecutor) ListTools() []Definition {
	return r.inner.ListTools()
}

func (r *RecordingExecutor) recordCall(call ToolCall, result ToolResult, execErr error, startedAt, completedAt time.Time) {
	if r.sink == nil {
		return
	}

	status := "success"
	var errMsg string
	if execErr != nil {
		status = "error"
		errMsg = execErr.Error()
	} else if result.Error != "" {
		status = "error"
		errMsg = result.Error
	}

	resultPreview := result.Content
	if len(resultPreview) > MaxRecordedResultLength {
		resultPreview = resultPreview[:MaxRecordedResultLength] + "..."
	}

	rec := &audit.Record{
		CallID:      call.ID,
		ToolName:    call.Name,
		Parameters:  truncateJSON(call.Arguments, MaxRecordedParamsLength),
		Result:      resultPreview,
		Status:      status,
		Error:       errMsg,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.sink.Store(ctx, rec); err != nil {
		r.logger.Warn("Failed to record tool call",
			"tool", call.Name,
			"call_id", call.ID,
			"error", err)
	}
}

// truncateJSON marshals a map to JSON and truncates to maxLen.
func truncateJSON(m map[string]any, maxLen int) string {
	if m == nil {
		return "{}"
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}

	s := string(data)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
