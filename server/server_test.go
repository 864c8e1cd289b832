package server

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbg/mcp-flag-sweeper/config"
	"github.com/hbg/mcp-flag-sweeper/tools"
)

func TestNewWithDefaults(t *testing.T) {
	s, cleanup, err := New(config.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestNewNilConfig(t *testing.T) {
	s, cleanup, err := New(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	cleanup()
}

type fixedExecutor struct {
	result tools.ToolResult
	err    error
	called tools.ToolCall
}

func (f *fixedExecutor) Execute(_ context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	f.called = call
	return f.result, f.err
}

func (f *fixedExecutor) ListTools() []tools.Definition { return nil }

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestHandlerForwardsArguments(t *testing.T) {
	exec := &fixedExecutor{result: tools.ToolResult{Content: `{"flags": []}`}}
	handler := handlerFor(exec, "list_flags")

	res, err := handler(context.Background(), callReq("list_flags", map[string]any{"working_directory": "/tmp"}))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.IsError)

	assert.Equal(t, "list_flags", exec.called.Name)
	assert.Equal(t, "/tmp", exec.called.Arguments["working_directory"])
}

func TestHandlerExecutorError(t *testing.T) {
	exec := &fixedExecutor{err: errors.New("unknown tool: bogus")}
	handler := handlerFor(exec, "bogus")

	res, err := handler(context.Background(), callReq("bogus", nil))
	require.NoError(t, err, "executor failures become tool errors, not protocol errors")
	assert.True(t, res.IsError)
}

func TestHandlerFailurePayloadStillReturned(t *testing.T) {
	exec := &fixedExecutor{result: tools.ToolResult{
		Content: `{"transformed_code": "x()", "error": "flag not found"}`,
		Error:   "flag not found",
	}}
	handler := handlerFor(exec, "apply_rewrite")

	res, err := handler(context.Background(), callReq("apply_rewrite", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError, "payload-bearing failures are returned as data")
}

func TestHandlerBareError(t *testing.T) {
	exec := &fixedExecutor{result: tools.ToolResult{Error: "code argument is required"}}
	handler := handlerFor(exec, "apply_rewrite")

	res, err := handler(context.Background(), callReq("apply_rewrite", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
