package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"horse.fit/brandstudio/internal/candidate"
)

type arxivFeed struct {
	Entries []struct {
		ID      string `xml:"id"`
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Updated string `xml:"updated"`
	} `xml:"entry"`
}

// FetchArxiv reads the newest LLM/agent submissions from the arXiv Atom API.
func (c *Client) FetchArxiv(ctx context.Context) ([]candidate.RawItem, error) {
	queryURL := fmt.Sprintf(
		"%s/api/query?search_query=all:llm+OR+all:agent&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		c.arxivBaseURL, defaultMaxItems)

	body, err := c.get(ctx, queryURL, "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("arxiv query: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv parse: %w", err)
	}

	items := make([]candidate.RawItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		topic := strings.Join(strings.Fields(entry.Title), " ")
		if topic == "" {
			topic = "arXiv paper"
		}
		summary := truncateSummary(strings.Join(strings.Fields(entry.Summary), " "))
		if summary == "" {
			summary = topic
		}
		paperURL := strings.TrimSpace(entry.ID)
		if paperURL == "" {
			paperURL = "https://arxiv.org"
		}

		items = append(items, candidate.RawItem{
			Source:     "arxiv",
			URL:        paperURL,
			Topic:      topic,
			Summary:    summary,
			Language:   "en",
			AgeMinutes: ageMinutes(parseRFC3339(entry.Updated)),
		})
	}
	return items, nil
}
