package connector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// HFPublisher commits markdown into a Hugging Face repo. The hf_spaces
// channel targets a space repo, hf_blog a dataset repo.
type HFPublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channel    string
}

func NewHFPublisher(token, channel string) *HFPublisher {
	return &HFPublisher{
		httpClient: newHTTPClient(),
		baseURL:    "https://huggingface.co",
		token:      token,
		channel:    channel,
	}
}

func NewHFPublisherFromEnv(channel string) *HFPublisher {
	token := envValue("HF_TOKEN")
	if token == "" {
		return nil
	}
	return NewHFPublisher(token, channel)
}

func (p *HFPublisher) Name() string { return p.channel }

func (p *HFPublisher) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.token}
}

func (p *HFPublisher) repoType() string {
	if p.channel == ChannelHFSpaces {
		return "space"
	}
	return "dataset"
}

func (p *HFPublisher) ValidateConnection(ctx context.Context) error {
	if err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/api/whoami-v2", p.headers(), nil, nil); err != nil {
		return fmt.Errorf("hugging face whoami: %w", err)
	}
	return nil
}

func (p *HFPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	repoID := strings.TrimSpace(req.Target)
	if repoID == "" {
		return PublishOutcome{}, fmt.Errorf("hugging face publish: repo id target is required")
	}

	repoType := p.repoType()
	slug := truncateRunes(strings.ReplaceAll(strings.ToLower(req.Title), " ", "-"), 50)
	if slug == "" {
		slug = "post"
	}
	path := "brand-studio/" + slug + ".md"

	payload := map[string]any{
		"summary": "Brand Studio publish: " + truncateRunes(req.Title, 120),
		"files": []map[string]any{
			{
				"path":     path,
				"content":  base64.StdEncoding.EncodeToString([]byte(req.Content)),
				"encoding": "base64",
			},
		},
	}
	commitURL := fmt.Sprintf("%s/api/%ss/%s/commit/main", p.baseURL, repoType, repoID)
	if err := doJSON(ctx, p.httpClient, http.MethodPost, commitURL, p.headers(), payload, nil); err != nil {
		return PublishOutcome{}, fmt.Errorf("hugging face publish: %w", err)
	}

	return PublishOutcome{
		ExternalID: fmt.Sprintf("hf-%s-%s:%s", repoType, repoID, path),
		URL:        fmt.Sprintf("%s/%ss/%s/blob/main/%s", p.baseURL, repoType, repoID, path),
		Message:    "Published to Hugging Face " + repoType,
	}, nil
}
