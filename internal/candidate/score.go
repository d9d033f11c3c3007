package candidate

import "strings"

const (
	relevanceWeight  = 0.40
	timelinessWeight = 0.25
	authorityWeight  = 0.25
	riskWeight       = 0.20

	timelinessHorizonMinutes = 1440
)

var (
	relevanceKeywords = []string{"ai", "agent", "llm", "governance", "routing", "memory", "module"}
	authorityKeywords = []string{"engineering", "runtime", "golang", "devops", "architecture", "platform"}
	riskKeywords      = []string{"giveaway", "crypto moon", "viral trick", "spam"}
)

// Score computes the deterministic opportunity breakdown from raw text
// signals. Same inputs always produce the same output.
func Score(topic, summary string, ageMinutes int) ScoreBreakdown {
	text := strings.ToLower(topic + " " + summary)

	relevance := clip01(float64(keywordHits(text, relevanceKeywords)) / 6)
	timeliness := clip01(1 - float64(ageMinutes)/timelinessHorizonMinutes)
	authority := clip01(float64(keywordHits(text, authorityKeywords)) / 5)
	risk := clip01(float64(keywordHits(text, riskKeywords)) / 2)

	final := clip01(relevanceWeight*relevance +
		timelinessWeight*timeliness +
		authorityWeight*authority -
		riskWeight*risk)

	reasons := make([]string, 0, 4)
	if relevance >= 0.6 {
		reasons = append(reasons, "high relevance")
	}
	if timeliness >= 0.7 {
		reasons = append(reasons, "fresh")
	}
	if authority >= 0.6 {
		reasons = append(reasons, "authority fit")
	}
	if risk >= 0.3 {
		reasons = append(reasons, "risk penalty applied")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "balanced opportunity")
	}

	return ScoreBreakdown{
		Relevance:    relevance,
		Timeliness:   timeliness,
		AuthorityFit: authority,
		RiskPenalty:  risk,
		FinalScore:   final,
		Reasons:      reasons,
	}
}

func keywordHits(text string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

func clip01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
