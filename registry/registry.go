// Package registry provides the normalized feature-flag registry model
// and the parsers that populate it from on-disk flag configs.
//
// A registry is the pair (flags, patterns): the flag records keyed by
// name, and the ordered catalog of flag-check call-site function names
// used for rule synthesis. Registries are treated as immutable once
// constructed; loads replace the whole value, they never merge.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Flag is one entry in the flag registry.
type Flag struct {
	// Name is the unique, case-sensitive flag identifier.
	Name string `json:"-"`
	// Value is the configured flag value normalized to a string
	// literal. Boolean source values lowercase to "true"/"false".
	Value string `json:"value"`
	// Description is free text and may be empty.
	Description string `json:"description"`
	// ReplaceWith is the literal substituted at matched call sites.
	// Defaults to Value when not explicitly configured.
	ReplaceWith string `json:"replace_with"`
	// Enabled is true iff the source value was boolean true, or its
	// string form case-insensitively equals "true".
	Enabled bool `json:"enabled"`
}

// Registry is the in-memory form of a loaded flag configuration.
type Registry struct {
	Flags    map[string]Flag
	Patterns []string

	// SkippedLines counts malformed flag lines the document parser
	// dropped. Diagnostic only; always zero for the structured format.
	SkippedLines int
}

// New returns an empty registry: no flags, no patterns.
func New() *Registry {
	return &Registry{Flags: make(map[string]Flag)}
}

// Lookup returns the flag with the given name.
func (r *Registry) Lookup(name string) (Flag, bool) {
	f, ok := r.Flags[name]
	return f, ok
}

// Names returns the known flag names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Flags))
	for name := range r.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the registry holds no flags and no patterns.
func (r *Registry) Empty() bool {
	return len(r.Flags) == 0 && len(r.Patterns) == 0
}

// ParseError reports a malformed flag config. It wraps the underlying
// syntax error so callers can surface the detail verbatim.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s flag config: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// normalizeLiteral renders a configured value as its canonical string
// form. Booleans lowercase to "true"/"false"; numbers keep their
// source text via json.Number.
func normalizeLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
