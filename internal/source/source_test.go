package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <title>AI governance in practice</title>
      <description>&lt;p&gt;Notes on &lt;b&gt;runtime&lt;/b&gt; fallback paths.&lt;/p&gt;</description>
      <link>https://example.org/post?utm_source=feed&amp;id=7</link>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <description></description>
      <link></link>
    </item>
  </channel>
</rss>`

func TestFetchRSS_ParsesItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	items := client.FetchRSS(context.Background(), []string{server.URL})
	if len(items) != 2 {
		t.Fatalf("expected two items, got %d", len(items))
	}

	first := items[0]
	if first.Source != "rss" {
		t.Fatalf("unexpected source: %q", first.Source)
	}
	if first.Topic != "AI governance in practice" {
		t.Fatalf("unexpected topic: %q", first.Topic)
	}
	if first.Summary != "Notes on runtime fallback paths." {
		t.Fatalf("expected HTML-stripped summary, got %q", first.Summary)
	}
	if first.URL != "https://example.org/post?utm_source=feed&id=7" {
		t.Fatalf("unexpected url: %q", first.URL)
	}

	// Items with blank fields fall back to placeholders.
	second := items[1]
	if second.Topic != "RSS topic" || second.URL != server.URL {
		t.Fatalf("unexpected fallback item: %+v", second)
	}
}

func TestFetchRSS_FeedFailureContributesNothing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	if items := client.FetchRSS(context.Background(), []string{server.URL}); len(items) != 0 {
		t.Fatalf("expected no items from failing feed, got %d", len(items))
	}
}

func TestFetchGitHub_ParsesRepositories(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"items":[{"full_name":"acme/agent-kit","description":"Agent toolkit","html_url":"https://github.com/acme/agent-kit","updated_at":"2026-08-30T09:00:00Z"}]}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	client.githubBaseURL = server.URL

	items, err := client.FetchGitHub(context.Background())
	if err != nil {
		t.Fatalf("FetchGitHub: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Topic != "acme/agent-kit" || items[0].Language != "en" || items[0].Source != "github" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestFetchHackerNews_SkipsBrokenStories(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/topstories.json":
			fmt.Fprint(w, `[1, 2]`)
		case "/v0/item/1.json":
			fmt.Fprint(w, `{"title":"Show HN: LLM router","url":"https://example.org/router","time":1700000000}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	client.hackerNewsBaseURL = server.URL

	items, err := client.FetchHackerNews(context.Background())
	if err != nil {
		t.Fatalf("FetchHackerNews: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the broken story to be skipped, got %d items", len(items))
	}
	if items[0].Topic != "Show HN: LLM router" || items[0].Source != "hn" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestFetchArxiv_ParsesAtomEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>https://arxiv.org/abs/2608.01234</id>
    <title>Agent memory
      survey</title>
    <summary>A survey of agent memory systems.</summary>
    <updated>2026-08-29T12:00:00Z</updated>
  </entry>
</feed>`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop())
	client.arxivBaseURL = server.URL

	items, err := client.FetchArxiv(context.Background())
	if err != nil {
		t.Fatalf("FetchArxiv: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Topic != "Agent memory survey" {
		t.Fatalf("expected whitespace-collapsed topic, got %q", items[0].Topic)
	}
	if items[0].URL != "https://arxiv.org/abs/2608.01234" || items[0].Source != "arxiv" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	if got := stripHTML("<div><p>Hello <b>world</b></p></div>"); got != "Hello world" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := stripHTML("plain text"); got != "plain text" {
		t.Fatalf("unexpected passthrough: %q", got)
	}
	if got := stripHTML("  "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
