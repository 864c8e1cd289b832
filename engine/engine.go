// Package engine defines the contract with the external code-rewrite
// engine and provides a subprocess client for it.
//
// The engine is a black box: it accepts a source snippet, a language
// identifier, and a rule graph, and returns transformed-snippet
// summaries. This package never parses or validates the snippet or
// the queries itself; it only normalizes the engine's failures into
// the error taxonomy consumed by the orchestrator.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hbg/mcp-flag-sweeper/rules"
)

// Request is one rewrite submission: a snippet plus the rule graph to
// apply against it.
type Request struct {
	// ID correlates logs and audit records for one invocation. The
	// client assigns one when empty.
	ID       string       `json:"id,omitempty"`
	Code     string       `json:"code"`
	Language string       `json:"language"`
	Rules    []rules.Rule `json:"rules"`
	Edges    []rules.Edge `json:"edges"`
}

// Summary is one transformed-snippet result from the engine. An empty
// summary list is a valid outcome meaning no rule matched.
type Summary struct {
	Path    string `json:"path,omitempty"`
	Content string `json:"content"`
}

// Engine executes rewrite requests. Implementations must honor the
// context; a single request maps to exactly one engine invocation.
type Engine interface {
	Rewrite(ctx context.Context, req Request) ([]Summary, error)
}

// QuerySyntaxError reports that the engine rejected a rule's
// pattern-match query as unparseable.
type QuerySyntaxError struct {
	Detail string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("invalid query syntax: %s", e.Detail)
}

// Error is any engine failure other than a query-syntax rejection.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine execution failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// querySyntaxMarker is the text the engine emits when it cannot parse
// a rule query.
const querySyntaxMarker = "Cannot parse the tree-sitter query"

// Classify maps a raw engine failure onto the error taxonomy: a
// *QuerySyntaxError when the failure text indicates a pattern-syntax
// problem, a generic *Error otherwise. Already-classified errors pass
// through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *QuerySyntaxError, *Error:
		return err
	}
	if strings.Contains(err.Error(), querySyntaxMarker) {
		return &QuerySyntaxError{Detail: err.Error()}
	}
	return &Error{Err: err}
}
