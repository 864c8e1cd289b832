// Package tools defines the agent tool contract for flagsweeper and
// shared wrappers around tool executors.
package tools

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
)

// ToolCall is one tool invocation from the agent.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult is the outcome of a tool invocation. Content carries the
// JSON payload returned to the agent; Error is the short failure
// summary when the tool could not complete. Both may be set: failure
// payloads still carry usable fields (e.g. the untouched snippet).
type ToolResult struct {
	CallID  string
	Content string
	Error   string
}

// Definition describes a tool to the transport layer: its name,
// description, and JSON-schema parameter object.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Executor executes tool calls and advertises the tools it serves.
type Executor interface {
	Execute(ctx context.Context, call ToolCall) (ToolResult, error)
	ListTools() []Definition
}

// Allowed reports whether a tool name passes the allowlist patterns.
// An empty allowlist allows every tool.
func Allowed(allowlist []string, name string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, pattern := range allowlist {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
