package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/candidate"
	"horse.fit/brandstudio/internal/globaltime"
)

const (
	defaultFetchTimeout = 8 * time.Second
	defaultMaxItems     = 12
	maxItemsPerFeed     = 8
	maxSummaryLength    = 500

	userAgent = "brandstudio/1.0"
)

// Client fetches raw discovery items from the external sources. Every
// fetcher is independent: one source failing contributes zero items and
// never aborts a refresh.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger

	githubBaseURL     string
	hackerNewsBaseURL string
	arxivBaseURL      string
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		httpClient:        &http.Client{Timeout: defaultFetchTimeout},
		logger:            logger,
		githubBaseURL:     "https://api.github.com",
		hackerNewsBaseURL: "https://hacker-news.firebaseio.com",
		arxivBaseURL:      "https://export.arxiv.org",
	}
}

// FetchAll queries every configured source and merges whatever arrived.
func (c *Client) FetchAll(ctx context.Context, rssURLs []string) []candidate.RawItem {
	items := make([]candidate.RawItem, 0, 4*defaultMaxItems)

	items = append(items, c.FetchRSS(ctx, rssURLs)...)

	if fetched, err := c.FetchGitHub(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("github fetch failed")
	} else {
		items = append(items, fetched...)
	}

	if fetched, err := c.FetchHackerNews(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("hacker news fetch failed")
	} else {
		items = append(items, fetched...)
	}

	if fetched, err := c.FetchArxiv(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("arxiv fetch failed")
	} else {
		items = append(items, fetched...)
	}

	return items
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)
	if accept != "" {
		request.Header.Set("Accept", accept)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", url, response.Status)
	}
	return io.ReadAll(io.LimitReader(response.Body, 4<<20))
}

// ageMinutes converts a publication time into candidate age. Items without
// a usable timestamp are treated as a day old so timeliness scores zero.
func ageMinutes(publishedAt *time.Time) int {
	if publishedAt == nil {
		return 24 * 60
	}
	delta := globaltime.UTC().Sub(publishedAt.UTC())
	minutes := int(delta.Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func truncateSummary(text string) string {
	if len(text) <= maxSummaryLength {
		return text
	}
	return text[:maxSummaryLength]
}
