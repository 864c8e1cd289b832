// Package rules models the pattern-match/replacement rules submitted
// to the external rewrite engine and synthesizes them from registry
// flags.
package rules

// Rule is one pattern-match/replacement rule in a rule graph.
type Rule struct {
	Name string `json:"name"`
	// Query is a pattern-match expression in the engine's query
	// language. Synthesized queries use the "cs " concrete-syntax
	// prefix.
	Query   string `json:"query"`
	Replace string `json:"replace"`
	// ReplaceNode designates which matched sub-node to substitute.
	// "*" means the whole match. Omitted when not set.
	ReplaceNode string `json:"replace_node,omitempty"`
	// IsSeedRule marks a rule as an independent entry point, not
	// gated by another rule firing.
	IsSeedRule bool `json:"is_seed_rule"`
}

// Edge describes how firing one rule enables evaluation of another.
type Edge struct {
	FromRule string `json:"from_rule"`
	To       string `json:"to"`
	Scope    string `json:"scope"`
}

// DefaultEdgeScope is applied when an edge carries no scope.
const DefaultEdgeScope = "parent"

// DefaultRuleName is applied when a supplied rule carries no name.
const DefaultRuleName = "unnamed_rule"

// FromMap normalizes a caller-supplied rule dictionary into a Rule.
// Missing fields get defaults; replace_node is carried through only
// when explicitly present.
func FromMap(m map[string]any) Rule {
	r := Rule{Name: DefaultRuleName}
	if v, ok := m["name"].(string); ok {
		r.Name = v
	}
	if v, ok := m["query"].(string); ok {
		r.Query = v
	}
	if v, ok := m["replace"].(string); ok {
		r.Replace = v
	}
	if v, ok := m["replace_node"].(string); ok {
		r.ReplaceNode = v
	}
	if v, ok := m["is_seed_rule"].(bool); ok {
		r.IsSeedRule = v
	}
	return r
}

// EdgeFromMap normalizes a caller-supplied edge dictionary into an
// Edge, defaulting scope to "parent".
func EdgeFromMap(m map[string]any) Edge {
	e := Edge{Scope: DefaultEdgeScope}
	if v, ok := m["from_rule"].(string); ok {
		e.FromRule = v
	}
	if v, ok := m["to"].(string); ok {
		e.To = v
	}
	if v, ok := m["scope"].(string); ok && v != "" {
		e.Scope = v
	}
	return e
}
