package source

import (
	"context"
	"encoding/xml"
	"net/mail"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"horse.fit/brandstudio/internal/candidate"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// FetchRSS reads each configured feed. A failing or malformed feed is
// skipped; the language is left blank so the normalizer can detect it.
func (c *Client) FetchRSS(ctx context.Context, urls []string) []candidate.RawItem {
	items := make([]candidate.RawItem, 0, len(urls)*maxItemsPerFeed)
	for _, feedURL := range urls {
		body, err := c.get(ctx, feedURL, "application/rss+xml, application/xml, text/xml")
		if err != nil {
			c.logger.Warn().Err(err).Str("feed", feedURL).Msg("rss fetch failed")
			continue
		}

		var doc rssDocument
		if err := xml.Unmarshal(body, &doc); err != nil {
			c.logger.Warn().Err(err).Str("feed", feedURL).Msg("rss parse failed")
			continue
		}

		for index, entry := range doc.Channel.Items {
			if index >= maxItemsPerFeed {
				break
			}

			topic := strings.TrimSpace(entry.Title)
			if topic == "" {
				topic = "RSS topic"
			}
			summary := truncateSummary(stripHTML(entry.Description))
			if summary == "" {
				summary = topic
			}
			link := strings.TrimSpace(entry.Link)
			if link == "" {
				link = feedURL
			}

			items = append(items, candidate.RawItem{
				Source:     "rss",
				URL:        link,
				Topic:      topic,
				Summary:    summary,
				AgeMinutes: ageMinutes(parseRFC1123(entry.PubDate)),
			})
		}
	}
	return items
}

// stripHTML reduces a feed description to its text content.
func stripHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.ContainsAny(trimmed, "<&") {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func parseRFC1123(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := mail.ParseDate(trimmed)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
