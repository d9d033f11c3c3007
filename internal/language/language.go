package language

import "strings"

const (
	Polish  = "pl"
	English = "en"
	Other   = "other"
)

// Classify maps a free-form language tag to the three-way code used across
// the module. Region subtags are ignored ("en-US" classifies as "en");
// anything unrecognized classifies as Other.
func Classify(raw string) string {
	switch NormalizeCode(raw) {
	case Polish:
		return Polish
	case English:
		return English
	default:
		return Other
	}
}

// NormalizeCode returns the lowercase primary language subtag
// (for example, "en" from "EN_us"). Blank or invalid values return "".
func NormalizeCode(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	if dash := strings.IndexByte(trimmed, '-'); dash >= 0 {
		trimmed = trimmed[:dash]
	}
	if trimmed == "" || !isAlphaLower(trimmed) {
		return ""
	}
	return trimmed
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
