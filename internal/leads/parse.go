package leads

import (
	"encoding/json"
	"strings"
)

// tierFunc attempts one interpretation of raw input. A false return means
// "try the next tier"; tiers never surface errors.
type tierFunc func(input string) (Collection, bool)

// textTiers are tried in order; the first match wins. The line fallback
// always matches, so ParseText is total.
var textTiers = []tierFunc{
	parseStructured,
	parseTabular,
	parseLines,
}

// ParseText converts arbitrary user-supplied text into a Collection.
//
// It never fails: structured input is decoded, delimited tables are read by
// header, and anything else degrades to one record per non-empty line.
// Whitespace-only input yields an empty Collection, not an error.
func ParseText(input string) Collection {
	for _, tier := range textTiers {
		if c, ok := tier(input); ok {
			return c
		}
	}
	return Collection{}
}

// parseStructured accepts a single JSON object or an array made entirely of
// objects. Scalars, strings, and mixed arrays fall through: they are not lead
// records.
func parseStructured(input string) (Collection, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]any:
		return Collection{Record(t)}, true
	case []any:
		out := make(Collection, 0, len(t))
		for _, el := range t {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, Record(m))
		}
		return out, true
	default:
		return nil, false
	}
}

// parseLines is the terminal tier: one record per non-empty trimmed line,
// keyed by a fixed field name.
func parseLines(input string) (Collection, bool) {
	out := Collection{}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, Record{"input": line})
	}
	return out, true
}
