package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExecEngine invokes the rewrite engine as a subprocess. The request
// is written to the engine's stdin as JSON; the engine answers on
// stdout with
//
//	{"summaries": [{"content": "..."}], "error": ""}
//
// A non-zero exit or a non-empty error field is a failure; stderr is
// folded into the failure text so query-syntax diagnostics survive
// classification.
type ExecEngine struct {
	command string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecEngine creates a subprocess engine client. timeout zero
// means no deadline beyond the caller's context.
func NewExecEngine(command string, args []string, timeout time.Duration, logger *slog.Logger) *ExecEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecEngine{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
		logger:  logger,
	}
}

type execResponse struct {
	Summaries []Summary `json:"summaries"`
	Error     string    `json:"error"`
}

// Rewrite submits one request to the engine binary. It is attempted
// exactly once; retries are the caller's decision.
func (e *ExecEngine) Rewrite(ctx context.Context, req Request) ([]Summary, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	e.logger.Debug("Engine invocation",
		slog.String("id", req.ID),
		slog.String("command", e.command),
		slog.Int("rules", len(req.Rules)),
		slog.Duration("elapsed", elapsed),
		slog.Bool("failed", runErr != nil))

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("engine timed out after %s: %w", elapsed.Round(time.Millisecond), ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", runErr, msg)
		}
		return nil, runErr
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Summaries, nil
}
