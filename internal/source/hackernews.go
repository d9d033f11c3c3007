package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"horse.fit/brandstudio/internal/candidate"
)

type hackerNewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
}

// FetchHackerNews reads the current top stories. Individual story failures
// are skipped so one bad item cannot sink the batch.
func (c *Client) FetchHackerNews(ctx context.Context) ([]candidate.RawItem, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.hackerNewsBaseURL+"/v0/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("hacker news top stories: %w", err)
	}
	if len(ids) > defaultMaxItems {
		ids = ids[:defaultMaxItems]
	}

	items := make([]candidate.RawItem, 0, len(ids))
	for _, storyID := range ids {
		var story hackerNewsItem
		storyURL := fmt.Sprintf("%s/v0/item/%d.json", c.hackerNewsBaseURL, storyID)
		if err := c.getJSON(ctx, storyURL, &story); err != nil {
			c.logger.Debug().Err(err).Int64("story_id", storyID).Msg("hacker news story fetch failed")
			continue
		}

		topic := strings.TrimSpace(story.Title)
		if topic == "" {
			topic = "HN story"
		}
		link := strings.TrimSpace(story.URL)
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", storyID)
		}

		var publishedAt *time.Time
		if story.Time > 0 {
			ts := time.Unix(story.Time, 0).UTC()
			publishedAt = &ts
		}

		items = append(items, candidate.RawItem{
			Source:     "hn",
			URL:        link,
			Topic:      topic,
			Summary:    topic,
			Language:   "en",
			AgeMinutes: ageMinutes(publishedAt),
		})
	}
	return items, nil
}
