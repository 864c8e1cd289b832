package rules

import (
	"fmt"

	"github.com/hbg/mcp-flag-sweeper/registry"
)

// QueryPrefix selects the engine's concrete-syntax ("call-site")
// matching mode.
const QueryPrefix = "cs "

// ShapesPerPattern is the number of call-site shapes enumerated per
// catalog entry.
const ShapesPerPattern = 4

// shapes enumerates the call-site templates for one flag-check
// function: the flag as sole argument, first, last, and in the middle
// of the argument list. $args/$more_args are wildcard captures in the
// engine's query language.
func shapes(fn, flagName string) [ShapesPerPattern]string {
	return [ShapesPerPattern]string{
		fmt.Sprintf(`%s("%s")`, fn, flagName),
		fmt.Sprintf(`%s("%s", $args)`, fn, flagName),
		fmt.Sprintf(`%s($args, "%s")`, fn, flagName),
		fmt.Sprintf(`%s($args, "%s", $more_args)`, fn, flagName),
	}
}

// ForFlag synthesizes one seed rule per known call-site shape for the
// named flag: exactly 4×len(patterns) rules, or none when the catalog
// is empty (no blind guessing of call-site shapes).
//
// Enabled flags are replaced with their configured replacement
// (falling back to "true"); disabled flags always collapse to "false"
// regardless of any configured replacement.
//
// Rule names are "replace_<flag>_<i>" with i the 0-based position in
// the flattened catalog-then-shape expansion, so names are unique and
// deterministic for a given catalog order. No deduplication is done;
// textually identical catalog entries yield duplicate shapes.
//
// language is accepted for future per-language shape tables; all
// languages currently share the generic set.
func ForFlag(flagName string, flag registry.Flag, patterns []string, language string) []Rule {
	replaceValue := "false"
	if flag.Enabled {
		replaceValue = flag.ReplaceWith
		if replaceValue == "" {
			replaceValue = "true"
		}
	}

	if len(patterns) == 0 {
		return nil
	}

	out := make([]Rule, 0, len(patterns)*ShapesPerPattern)
	for _, fn := range patterns {
		for _, shape := range shapes(fn, flagName) {
			out = append(out, Rule{
				Name:        fmt.Sprintf("replace_%s_%d", flagName, len(out)),
				Query:       QueryPrefix + shape,
				Replace:     replaceValue,
				ReplaceNode: "*",
				IsSeedRule:  true,
			})
		}
	}
	return out
}
