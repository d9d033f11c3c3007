package connector

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var devtoTargetPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(?:/[A-Za-z0-9_-]+)*$`)

// DevtoPublisher posts markdown articles through the Dev.to articles API.
type DevtoPublisher struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	defaultTags []string
}

func NewDevtoPublisher(apiKey string, defaultTags []string) *DevtoPublisher {
	if len(defaultTags) == 0 {
		defaultTags = []string{"ai", "engineering"}
	}
	if len(defaultTags) > 4 {
		defaultTags = defaultTags[:4]
	}
	return &DevtoPublisher{
		httpClient:  newHTTPClient(),
		baseURL:     "https://dev.to",
		apiKey:      apiKey,
		defaultTags: defaultTags,
	}
}

func NewDevtoPublisherFromEnv() *DevtoPublisher {
	apiKey := envValue("DEVTO_API_KEY")
	if apiKey == "" {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(envValue("DEVTO_DEFAULT_TAGS"), ",") {
		if tag := strings.ToLower(strings.TrimSpace(raw)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return NewDevtoPublisher(apiKey, tags)
}

func (p *DevtoPublisher) Name() string { return "devto" }

func (p *DevtoPublisher) headers() map[string]string {
	return map[string]string{"api-key": p.apiKey}
}

func (p *DevtoPublisher) ValidateConnection(ctx context.Context) error {
	listURL := p.baseURL + "/api/articles/me/all?per_page=1"
	if err := doJSON(ctx, p.httpClient, http.MethodGet, listURL, p.headers(), nil, nil); err != nil {
		return fmt.Errorf("devto articles lookup: %w", err)
	}
	return nil
}

func (p *DevtoPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	article := map[string]any{
		"title":         req.Title,
		"body_markdown": req.Content,
		"published":     true,
		"tags":          p.defaultTags,
	}
	if slug := normalizeDevtoTarget(req.Target); slug != "" {
		article["canonical_url"] = "https://dev.to/" + slug
	}

	var response struct {
		ID  int64  `json:"id"`
		URL string `json:"url"`
	}
	articlesURL := p.baseURL + "/api/articles"
	if err := doJSON(ctx, p.httpClient, http.MethodPost, articlesURL, p.headers(), map[string]any{"article": article}, &response); err != nil {
		return PublishOutcome{}, fmt.Errorf("devto publish: %w", err)
	}

	externalID := "devto"
	if response.ID > 0 {
		externalID = fmt.Sprintf("devto-%d", response.ID)
	}
	return PublishOutcome{ExternalID: externalID, URL: response.URL, Message: "Published to Dev.to"}, nil
}

// normalizeDevtoTarget keeps only safe dev.to username/path slugs.
func normalizeDevtoTarget(target string) string {
	value := strings.Trim(strings.TrimSpace(target), "/")
	if value == "" || !devtoTargetPattern.MatchString(value) {
		return ""
	}
	return value
}
