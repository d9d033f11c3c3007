package candidate

// ScoreBreakdown explains how a candidate score was computed.
type ScoreBreakdown struct {
	Relevance    float64  `json:"relevance"`
	Timeliness   float64  `json:"timeliness"`
	AuthorityFit float64  `json:"authority_fit"`
	RiskPenalty  float64  `json:"risk_penalty"`
	FinalScore   float64  `json:"final_score"`
	Reasons      []string `json:"reasons"`
}

// Candidate is one scored, deduplicated piece of discovered content.
type Candidate struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	URL        string         `json:"url"`
	Topic      string         `json:"topic"`
	Summary    string         `json:"summary"`
	Language   string         `json:"language"`
	Score      float64        `json:"score"`
	AgeMinutes int            `json:"age_minutes"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`
	Reasons    []string       `json:"reasons"`
}

// RawItem is an unscored record as delivered by a source fetcher.
type RawItem struct {
	ID         string `json:"id,omitempty"`
	Source     string `json:"source"`
	URL        string `json:"url"`
	Topic      string `json:"topic"`
	Summary    string `json:"summary"`
	Language   string `json:"language"`
	AgeMinutes int    `json:"age_minutes"`
}
