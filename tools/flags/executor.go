// Package flags provides the feature-flag cleanup tools exposed to
// the agent: list_flags and apply_rewrite.
package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hbg/mcp-flag-sweeper/engine"
	"github.com/hbg/mcp-flag-sweeper/registry"
	"github.com/hbg/mcp-flag-sweeper/sweep"
	"github.com/hbg/mcp-flag-sweeper/tools"
)

// Tool names served by this executor.
const (
	ToolListFlags    = "list_flags"
	ToolApplyRewrite = "apply_rewrite"
)

// Executor implements the flag cleanup tools on top of a Sweeper.
type Executor struct {
	sweeper *sweep.Sweeper
}

// NewExecutor creates an executor over the given sweeper.
func NewExecutor(s *sweep.Sweeper) *Executor {
	return &Executor{sweeper: s}
}

// Execute dispatches a tool call.
func (e *Executor) Execute(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	switch call.Name {
	case ToolListFlags:
		return e.listFlags(ctx, call)
	case ToolApplyRewrite:
		return e.applyRewrite(ctx, call)
	default:
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("unknown tool: %s", call.Name),
		}, fmt.Errorf("unknown tool: %s", call.Name)
	}
}

// listFlags loads the flag config from the requested directory (or
// the configured search paths) and returns the parsed registry. Every
// successful load replaces the process-wide cache.
func (e *Executor) listFlags(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	dir, _ := call.Arguments["working_directory"].(string)

	info, err := e.sweeper.ListFlags(ctx, dir)
	if err != nil {
		where := dir
		if where == "" {
			where = "the configured search paths"
		}
		msg := fmt.Sprintf("flag config not found in %s", where)
		if !errors.Is(err, registry.ErrConfigNotFound) {
			msg = fmt.Sprintf("failed to load flag config: %v", err)
		}
		return payloadResult(call.ID, msg, map[string]any{
			"error":      msg,
			"flags":      []string{},
			"suggestion": "Create a flags.json or flags.md file with flag definitions",
		})
	}

	return payloadResult(call.ID, "", map[string]any{
		"flags":           info.Names,
		"flag_details":    info.Flags,
		"global_patterns": info.Patterns,
		"source_file":     info.SourceFile,
		"message": fmt.Sprintf("Loaded %d flags and %d global patterns from %s",
			len(info.Flags), len(info.Patterns), info.SourceFile),
	})
}

// applyRewrite resolves rules (explicit or synthesized from a flag
// name), runs the engine, and normalizes the outcome. The payload
// always carries transformed_code so callers can proceed without
// special-casing failures.
func (e *Executor) applyRewrite(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	code, ok := call.Arguments["code"].(string)
	if !ok {
		return tools.ToolResult{CallID: call.ID, Error: "code argument is required"}, nil
	}
	language, ok := call.Arguments["language"].(string)
	if !ok || language == "" {
		return tools.ToolResult{CallID: call.ID, Error: "language argument is required"}, nil
	}
	flagName, _ := call.Arguments["flag_name"].(string)

	req := sweep.Request{
		Code:     code,
		Language: language,
		FlagName: flagName,
		Rules:    mapSlice(call.Arguments["rules"]),
		Edges:    mapSlice(call.Arguments["edges"]),
	}

	out, err := e.sweeper.Apply(ctx, req)

	payload := map[string]any{"transformed_code": out.Code}
	if err != nil {
		msg, suggestion := describeFailure(err)
		payload["error"] = msg
		if suggestion != "" {
			payload["suggestion"] = suggestion
		}
		return payloadResult(call.ID, msg, payload)
	}

	if out.Message != "" {
		payload["message"] = out.Message
		payload["debug"] = fmt.Sprintf("Generated %d rules", out.RulesAttempted)
	}
	return payloadResult(call.ID, "", payload)
}

// describeFailure maps the error taxonomy onto agent-facing messages
// and remediation hints.
func describeFailure(err error) (msg, suggestion string) {
	var qse *engine.QuerySyntaxError
	var fnf *sweep.FlagNotFoundError
	var parseErr *registry.ParseError

	switch {
	case errors.Is(err, registry.ErrConfigNotFound):
		return "flag config file not found in the search paths",
			"Create a flags.json or flags.md file with flag definitions"
	case errors.As(err, &fnf):
		return fnf.Error(), ""
	case errors.As(err, &parseErr):
		return fmt.Sprintf("failed to load flags: %v", parseErr), ""
	case errors.As(err, &qse):
		return fmt.Sprintf("invalid query syntax: %s. Check the engine documentation for correct query syntax.", qse.Detail),
			"Try using simpler queries like 'if_stmt' or check the engine examples for proper syntax."
	default:
		return fmt.Sprintf("rewrite engine failed: %v", err), ""
	}
}

// mapSlice coerces a JSON-decoded argument into a slice of objects,
// dropping entries of any other shape.
func mapSlice(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// payloadResult marshals a payload into a ToolResult. errMsg is set
// as the result error while the payload stays usable.
func payloadResult(callID, errMsg string, payload map[string]any) (tools.ToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return tools.ToolResult{CallID: callID, Error: fmt.Sprintf("encode result: %v", err)}, nil
	}
	return tools.ToolResult{CallID: callID, Content: string(data), Error: errMsg}, nil
}

// ListTools returns the tool definitions for the flag cleanup tools.
func (e *Executor) ListTools() []tools.Definition {
	return []tools.Definition{
		{
			Name: ToolListFlags,
			Description: "List feature flags from a flags.json or flags.md file. " +
				"Parses the flag definitions and the flag-check function catalog, " +
				"and caches them for later apply_rewrite calls.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"working_directory": map[string]any{
						"type":        "string",
						"description": "Directory to look for the flag config file (defaults to the configured search paths)",
					},
				},
			},
		},
		{
			Name: ToolApplyRewrite,
			Description: "Apply rewrite rules to a code snippet to clean up stale feature " +
				"flag checks. Provide either explicit rules/edges, or a flag_name to " +
				"synthesize rules from the cached flag registry.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code": map[string]any{
						"type":        "string",
						"description": "The source code snippet to transform",
					},
					"language": map[string]any{
						"type":        "string",
						"description": "Programming language of the snippet (e.g. \"java\", \"go\")",
					},
					"rules": map[string]any{
						"type":        "array",
						"description": "Explicit rewrite rule definitions (optional; synthesized when flag_name is given)",
						"items":       map[string]any{"type": "object"},
					},
					"edges": map[string]any{
						"type":        "array",
						"description": "Rule graph edges (optional)",
						"items":       map[string]any{"type": "object"},
					},
					"flag_name": map[string]any{
						"type":        "string",
						"description": "Name of the flag to clean up using the cached flag registry",
					},
				},
				"required": []string{"code", "language"},
			},
		},
	}
}
