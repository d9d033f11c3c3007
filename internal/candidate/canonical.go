package candidate

import (
	"net/url"
	"strings"
)

var trackingQueryKeys = map[string]struct{}{
	"ref":    {},
	"source": {},
	"fbclid": {},
	"gclid":  {},
}

// CanonicalURL strips tracking query parameters and the fragment from a URL
// so equivalent links share one dedup identity. Remaining query parameters
// keep their original order. Malformed input is returned trimmed as-is.
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = filterQuery(parsed.RawQuery)
	return parsed.String()
}

func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			key = pair[:eq]
		}
		if isTrackingKey(key) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func isTrackingKey(key string) bool {
	normalized := strings.ToLower(key)
	if strings.HasPrefix(normalized, "utm_") {
		return true
	}
	_, tracked := trackingQueryKeys[normalized]
	return tracked
}
