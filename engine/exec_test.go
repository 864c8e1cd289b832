package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbg/mcp-flag-sweeper/rules"
)

// fakeEngine writes a shell script standing in for the engine binary.
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script engine stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestExecEngineSuccess(t *testing.T) {
	bin := fakeEngine(t, `echo '{"summaries": [{"content": "if true {}"}]}'`)
	e := NewExecEngine(bin, nil, 5*time.Second, nil)

	summaries, err := e.Rewrite(context.Background(), Request{
		Code:     `if isOn("beta") {}`,
		Language: "go",
		Rules:    []rules.Rule{{Name: "r0", Query: `cs isOn("beta")`, Replace: "true", IsSeedRule: true}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "if true {}", summaries[0].Content)
}

func TestExecEngineNoMatches(t *testing.T) {
	bin := fakeEngine(t, `echo '{"summaries": []}'`)
	e := NewExecEngine(bin, nil, 5*time.Second, nil)

	summaries, err := e.Rewrite(context.Background(), Request{Code: "x", Language: "go"})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestExecEngineStderrSurfacesInError(t *testing.T) {
	bin := fakeEngine(t, `echo 'Cannot parse the tree-sitter query: bad pattern' >&2; exit 1`)
	e := NewExecEngine(bin, nil, 5*time.Second, nil)

	_, err := e.Rewrite(context.Background(), Request{Code: "x", Language: "go"})
	require.Error(t, err)

	var qse *QuerySyntaxError
	require.ErrorAs(t, Classify(err), &qse)
}

func TestExecEngineErrorField(t *testing.T) {
	bin := fakeEngine(t, `echo '{"summaries": [], "error": "unsupported language: cobol"}'`)
	e := NewExecEngine(bin, nil, 5*time.Second, nil)

	_, err := e.Rewrite(context.Background(), Request{Code: "x", Language: "cobol"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestExecEngineTimeout(t *testing.T) {
	bin := fakeEngine(t, `sleep 10`)
	e := NewExecEngine(bin, nil, 100*time.Millisecond, nil)

	_, err := e.Rewrite(context.Background(), Request{Code: "x", Language: "go"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecEngineAssignsRequestID(t *testing.T) {
	// The stub copies its stdin to a file so the test can observe the
	// request the engine received.
	reqFile := filepath.Join(t.TempDir(), "request.json")
	bin := fakeEngine(t, `cat > `+reqFile+`; echo '{"summaries": []}'`)
	e := NewExecEngine(bin, nil, 5*time.Second, nil)

	_, err := e.Rewrite(context.Background(), Request{Code: "x", Language: "go"})
	require.NoError(t, err)

	captured, err := os.ReadFile(reqFile)
	require.NoError(t, err)
	assert.Contains(t, string(captured), `"id":`)
	assert.Contains(t, string(captured), `"language":"go"`)
}
