package metrics

import (
	"strconv"
	"strings"
)

// maxStringLen rejects values that are clearly prose, not a data point.
const maxStringLen = 100

// garbageIndicators are lowercase substrings that mark a value as the model
// talking about itself, a placeholder, or a non-answer.
var garbageIndicators = []string{
	"i cannot",
	"i can't",
	"i don't have",
	"i do not have",
	"unable to",
	"not available",
	"not disclosed",
	"not found",
	"not publicly",
	"no information",
	"not specified",
	"unknown",
	"n/a",
	"tbd",
	"as an ai",
	"i apologize",
	"search results",
	"based on the",
}

// SanitizeString validates an extracted string field. It returns the trimmed
// value and whether it is acceptable: non-empty, under the length ceiling,
// no bracket placeholders, no garbage phrases.
func SanitizeString(v string) (string, bool) {
	clean := strings.TrimSpace(v)
	if clean == "" || len(clean) > maxStringLen {
		return "", false
	}
	if strings.ContainsAny(clean, "[]{}<>") {
		return "", false
	}
	lower := strings.ToLower(clean)
	for _, g := range garbageIndicators {
		if strings.Contains(lower, g) {
			return "", false
		}
	}
	return clean, true
}

// FormatFunding renders a millions value the way the CRM expects, "43M" or
// "1200M", with no trailing zeros.
func FormatFunding(millions float64) string {
	return strconv.FormatFloat(millions, 'f', -1, 64) + "M"
}
