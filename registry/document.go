package registry

import (
	"bufio"
	"bytes"
	"strings"
)

// ParseDocument parses the markdown flag config format:
//
//	## Functions
//	isFeatureEnabled,getFlag
//
//	## Flags
//	beta_ui:true:Enables the beta UI:true
//	old_checkout:false
//
// The first non-empty line under "## Functions" is split on commas
// into the pattern catalog; later lines under the same section are
// ignored. Lines under "## Flags" are split into at most four
// colon-delimited fields: name:value:description:replace_with, the
// last two optional. Any other "##" heading closes both sections.
//
// Malformed flag lines (no colon) are silently skipped, never
// rejected; the count of dropped lines is reported via
// Registry.SkippedLines so loaders can log the leniency.
func ParseDocument(content []byte) (*Registry, error) {
	reg := New()

	var inFunctions, inFlags, functionsSet bool

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "##") {
			heading := strings.TrimSpace(strings.TrimPrefix(line, "##"))
			inFunctions = strings.EqualFold(heading, "Functions")
			inFlags = strings.EqualFold(heading, "Flags")
			continue
		}
		if line == "" {
			continue
		}

		switch {
		case inFunctions:
			if functionsSet {
				continue
			}
			for _, fn := range strings.Split(line, ",") {
				if fn = strings.TrimSpace(fn); fn != "" {
					reg.Patterns = append(reg.Patterns, fn)
				}
			}
			functionsSet = true

		case inFlags:
			if !strings.Contains(line, ":") {
				reg.SkippedLines++
				continue
			}
			parts := strings.SplitN(line, ":", 4)
			flag := documentFlag(parts)
			reg.Flags[flag.Name] = flag
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Format: FormatDocument, Err: err}
	}

	return reg, nil
}

// documentFlag builds a Flag from the colon-delimited fields of one
// flag line. parts has at least two entries (the line contained a
// colon) and at most four.
func documentFlag(parts []string) Flag {
	name := strings.TrimSpace(parts[0])

	value := ""
	if len(parts) > 1 {
		value = strings.TrimSpace(parts[1])
	}

	description := ""
	if len(parts) > 2 {
		description = strings.TrimSpace(parts[2])
	}

	replaceWith := value
	if len(parts) > 3 {
		if rw := strings.TrimSpace(parts[3]); rw != "" {
			replaceWith = rw
		}
	}

	return Flag{
		Name:        name,
		Value:       value,
		Description: description,
		ReplaceWith: replaceWith,
		Enabled:     strings.EqualFold(value, "true"),
	}
}
