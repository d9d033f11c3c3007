package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"horse.fit/brandstudio/internal/candidate"
)

type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		HTMLURL     string `json:"html_url"`
		UpdatedAt   string `json:"updated_at"`
	} `json:"items"`
}

// FetchGitHub searches recently updated AI repositories.
func (c *Client) FetchGitHub(ctx context.Context) ([]candidate.RawItem, error) {
	query := url.QueryEscape("topic:ai stars:>200")
	searchURL := fmt.Sprintf("%s/search/repositories?q=%s&sort=updated&order=desc&per_page=%d",
		c.githubBaseURL, query, defaultMaxItems)

	var payload githubSearchResponse
	if err := c.getJSON(ctx, searchURL, &payload); err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}

	items := make([]candidate.RawItem, 0, len(payload.Items))
	for _, repository := range payload.Items {
		topic := strings.TrimSpace(repository.FullName)
		if topic == "" {
			topic = "GitHub repository"
		}
		summary := truncateSummary(strings.TrimSpace(repository.Description))
		if summary == "" {
			summary = topic
		}
		repoURL := strings.TrimSpace(repository.HTMLURL)
		if repoURL == "" {
			repoURL = "https://github.com"
		}

		items = append(items, candidate.RawItem{
			Source:     "github",
			URL:        repoURL,
			Topic:      topic,
			Summary:    summary,
			Language:   "en",
			AgeMinutes: ageMinutes(parseRFC3339(repository.UpdatedAt)),
		})
	}
	return items, nil
}

func parseRFC3339(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
