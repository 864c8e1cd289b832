package flags

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbg/mcp-flag-sweeper/engine"
	"github.com/hbg/mcp-flag-sweeper/registry"
	"github.com/hbg/mcp-flag-sweeper/sweep"
	"github.com/hbg/mcp-flag-sweeper/tools"
)

type stubEngine struct {
	summaries []engine.Summary
	err       error
}

func (s *stubEngine) Rewrite(_ context.Context, _ engine.Request) ([]engine.Summary, error) {
	return s.summaries, s.err
}

func newExecutor(eng engine.Engine, searchDirs ...string) *Executor {
	var loc *registry.Locator
	if len(searchDirs) > 0 {
		loc = registry.NewLocator(searchDirs...)
	} else {
		loc = registry.NewLocator(os.DevNull)
	}
	sw := sweep.New(eng, registry.NewCache(), loc, registry.NewFormatRegistry(), nil)
	return NewExecutor(sw)
}

func decode(t *testing.T, res tools.ToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content), &payload))
	return payload
}

func TestListFlagsSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"functions": ["isFeatureEnabled"], "flags": {"beta": {"value": true, "description": "Beta UI"}}}`), 0644))

	e := newExecutor(&stubEngine{})
	res, err := e.Execute(context.Background(), tools.ToolCall{
		ID:        "c1",
		Name:      ToolListFlags,
		Arguments: map[string]any{"working_directory": dir},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Error)

	payload := decode(t, res)
	assert.Equal(t, []any{"beta"}, payload["flags"])
	assert.Equal(t, []any{"isFeatureEnabled"}, payload["global_patterns"])
	assert.Equal(t, path, payload["source_file"])
	assert.Contains(t, payload["message"], "Loaded 1 flags")

	details := payload["flag_details"].(map[string]any)
	beta := details["beta"].(map[string]any)
	assert.Equal(t, "true", beta["value"])
	assert.Equal(t, true, beta["enabled"])
	assert.Equal(t, "Beta UI", beta["description"])
}

func TestListFlagsNotFound(t *testing.T) {
	e := newExecutor(&stubEngine{})
	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name:      ToolListFlags,
		Arguments: map[string]any{"working_directory": t.TempDir()},
	})
	require.NoError(t, err, "tool-level failures are data, not Go errors")
	assert.NotEmpty(t, res.Error)

	payload := decode(t, res)
	assert.Contains(t, payload["error"], "not found")
	assert.Equal(t, []any{}, payload["flags"])
	assert.NotEmpty(t, payload["suggestion"])
}

func TestApplyRewriteWithFlagName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flags.json"),
		[]byte(`{"functions": ["getFlag"], "flags": {"beta": {"value": true}}}`), 0644))

	e := newExecutor(&stubEngine{summaries: []engine.Summary{{Content: "if true {}"}}}, dir)
	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name: ToolApplyRewrite,
		Arguments: map[string]any{
			"code":      `if getFlag("beta") {}`,
			"language":  "go",
			"flag_name": "beta",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Error)

	payload := decode(t, res)
	assert.Equal(t, "if true {}", payload["transformed_code"])
	_, hasMessage := payload["message"]
	assert.False(t, hasMessage, "successful transformations carry no diagnostic")
}

func TestApplyRewriteZeroMatch(t *testing.T) {
	e := newExecutor(&stubEngine{summaries: nil})
	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name: ToolApplyRewrite,
		Arguments: map[string]any{
			"code":     "unrelated()",
			"language": "go",
			"rules": []any{
				map[string]any{"query": `cs getFlag("x")`, "replace": "true", "is_seed_rule": true},
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Error, "no match is a valid outcome, not an error")

	payload := decode(t, res)
	assert.Equal(t, "unrelated()", payload["transformed_code"])
	assert.Equal(t, "No transformations applied", payload["message"])
	assert.Contains(t, payload["debug"], "1 rules")
}

func TestApplyRewriteConfigNotFound(t *testing.T) {
	e := newExecutor(&stubEngine{}, t.TempDir())
	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name: ToolApplyRewrite,
		Arguments: map[string]any{
			"code":      "original()",
			"language":  "go",
			"flag_name": "missing",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Error)

	payload := decode(t, res)
	assert.Equal(t, "original()", payload["transformed_code"],
		"failure payloads still carry the untouched snippet")
	assert.Contains(t, payload["error"], "not found")
	assert.NotEmpty(t, payload["suggestion"])
}

func TestApplyRewriteQuerySyntaxFailure(t *testing.T) {
	e := newExecutor(&stubEngine{err: &engine.QuerySyntaxError{Detail: "Cannot parse the tree-sitter query"}})
	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name: ToolApplyRewrite,
		Arguments: map[string]any{
			"code":     "x()",
			"language": "go",
			"rules":    []any{map[string]any{"query": "cs ???"}},
		},
	})
	require.NoError(t, err)

	payload := decode(t, res)
	assert.Equal(t, "x()", payload["transformed_code"])
	assert.Contains(t, payload["error"], "query syntax")
	assert.Contains(t, payload["suggestion"], "simpler queries")
}

func TestApplyRewriteMissingArguments(t *testing.T) {
	e := newExecutor(&stubEngine{})

	res, err := e.Execute(context.Background(), tools.ToolCall{
		Name:      ToolApplyRewrite,
		Arguments: map[string]any{"language": "go"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Error, "code argument")

	res, err = e.Execute(context.Background(), tools.ToolCall{
		Name:      ToolApplyRewrite,
		Arguments: map[string]any{"code": "x"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Error, "language argument")
}

func TestUnknownTool(t *testing.T) {
	e := newExecutor(&stubEngine{})
	_, err := e.Execute(context.Background(), tools.ToolCall{Name: "bogus"})
	require.Error(t, err)
}

func TestListToolsDefinitions(t *testing.T) {
	e := newExecutor(&stubEngine{})
	defs := e.ListTools()
	require.Len(t, defs, 2)

	names := []string{defs[0].Name, defs[1].Name}
	assert.Contains(t, names, ToolListFlags)
	assert.Contains(t, names, ToolApplyRewrite)

	for _, def := range defs {
		assert.NotEmpty(t, def.Description)
		assert.Equal(t, "object", def.Parameters["type"])
	}
}
