package registry

import (
	"bytes"
	"encoding/json"
	"strings"
)

// structuredConfig mirrors the flags.json layout:
//
//	{
//	  "functions": ["isFeatureEnabled", ...],
//	  "flags": {
//	    "flag_name": {"value": true, "description": "...", "replace_with": true}
//	  }
//	}
type structuredConfig struct {
	Functions []string                  `json:"functions"`
	Flags     map[string]structuredFlag `json:"flags"`
}

type structuredFlag struct {
	Value       any    `json:"value"`
	Description string `json:"description"`
	ReplaceWith any    `json:"replace_with"`
}

// ParseStructured parses the JSON flag config format. It has no side
// effects; installing the result into a cache is the caller's call.
//
// Boolean values are lowercased to "true"/"false" string literals.
// Enabled is true iff the source value was boolean true, or — for
// non-boolean values — iff the string form lowercases to "true".
// Malformed JSON fails with a *ParseError citing the syntax error.
func ParseStructured(content []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var cfg structuredConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ParseError{Format: FormatStructured, Err: err}
	}

	reg := New()
	reg.Patterns = append(reg.Patterns, cfg.Functions...)

	for name, data := range cfg.Flags {
		value := normalizeLiteral(data.Value)

		replaceWith := value
		if data.ReplaceWith != nil {
			replaceWith = normalizeLiteral(data.ReplaceWith)
		}

		enabled := false
		if b, ok := data.Value.(bool); ok {
			enabled = b
		} else {
			enabled = strings.EqualFold(value, "true")
		}

		reg.Flags[name] = Flag{
			Name:        name,
			Value:       value,
			Description: data.Description,
			ReplaceWith: replaceWith,
			Enabled:     enabled,
		}
	}

	return reg, nil
}
