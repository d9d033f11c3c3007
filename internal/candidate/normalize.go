package candidate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"

	"horse.fit/brandstudio/internal/langdetect"
	"horse.fit/brandstudio/internal/language"
)

// Normalize turns raw source records into scored, deduplicated candidates
// ranked by (score desc, age asc). Records sharing a dedup key keep the
// higher-scored copy; ties keep the first-seen record.
func Normalize(raws []RawItem) []Candidate {
	byKey := make(map[string]Candidate, len(raws))
	order := make([]string, 0, len(raws))

	for _, raw := range raws {
		normalized := normalizeOne(raw)
		key := dedupKey(normalized)

		existing, seen := byKey[key]
		if !seen {
			byKey[key] = normalized
			order = append(order, key)
			continue
		}
		if normalized.Score > existing.Score {
			byKey[key] = normalized
		}
	}

	candidates := make([]Candidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, byKey[key])
	}

	Rank(candidates)
	return candidates
}

// Rank sorts candidates in place by descending score, breaking ties by
// freshness. Re-run after merging in new raw batches.
func Rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].AgeMinutes < candidates[j].AgeMinutes
	})
}

func normalizeOne(raw RawItem) Candidate {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = NewID()
	}

	breakdown := Score(raw.Topic, raw.Summary, raw.AgeMinutes)

	return Candidate{
		ID:         id,
		Source:     strings.TrimSpace(raw.Source),
		URL:        CanonicalURL(raw.URL),
		Topic:      strings.TrimSpace(raw.Topic),
		Summary:    strings.TrimSpace(raw.Summary),
		Language:   resolveLanguage(raw),
		Score:      breakdown.FinalScore,
		AgeMinutes: maxInt(raw.AgeMinutes, 0),
		Breakdown:  breakdown,
		Reasons:    breakdown.Reasons,
	}
}

// resolveLanguage trusts an explicit pl/en tag; records without a usable tag
// are run through the language detector before falling back to "other".
func resolveLanguage(raw RawItem) string {
	if code := language.NormalizeCode(raw.Language); code != "" {
		return language.Classify(code)
	}
	if detected := langdetect.DetectISO6391(raw.Topic + " " + raw.Summary); detected != "" {
		return language.Classify(detected)
	}
	return language.Other
}

func dedupKey(c Candidate) string {
	payload := c.URL + "|" + strings.ToLower(c.Topic) + "|" + strings.ToLower(c.Summary)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// NewID mints a candidate id.
func NewID() string {
	return "cand-" + shortUUID()
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
