package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// MediumPublisher posts markdown stories through the Medium v1 API.
type MediumPublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewMediumPublisher(token string) *MediumPublisher {
	return &MediumPublisher{
		httpClient: newHTTPClient(),
		baseURL:    "https://api.medium.com",
		token:      token,
	}
}

func NewMediumPublisherFromEnv() *MediumPublisher {
	token := envValue("MEDIUM_TOKEN")
	if token == "" {
		return nil
	}
	return NewMediumPublisher(token)
}

func (p *MediumPublisher) Name() string { return "medium" }

func (p *MediumPublisher) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.token}
}

func (p *MediumPublisher) userID(ctx context.Context) (string, error) {
	var response struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/v1/me", p.headers(), nil, &response); err != nil {
		return "", fmt.Errorf("medium me lookup: %w", err)
	}
	if strings.TrimSpace(response.Data.ID) == "" {
		return "", fmt.Errorf("medium me lookup: missing user id in response")
	}
	return response.Data.ID, nil
}

func (p *MediumPublisher) ValidateConnection(ctx context.Context) error {
	_, err := p.userID(ctx)
	return err
}

func (p *MediumPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	userID, err := p.userID(ctx)
	if err != nil {
		return PublishOutcome{}, err
	}

	payload := map[string]any{
		"title":         truncateRunes(req.Title, 100),
		"contentFormat": "markdown",
		"content":       req.Content,
		"publishStatus": "public",
	}
	canonicalURL := strings.TrimSpace(req.Target)
	if strings.HasPrefix(canonicalURL, "http://") || strings.HasPrefix(canonicalURL, "https://") {
		payload["canonicalUrl"] = canonicalURL
	}

	var response struct {
		Data struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	}
	postsURL := fmt.Sprintf("%s/v1/users/%s/posts", p.baseURL, userID)
	if err := doJSON(ctx, p.httpClient, http.MethodPost, postsURL, p.headers(), payload, &response); err != nil {
		return PublishOutcome{}, fmt.Errorf("medium publish: %w", err)
	}

	externalID := response.Data.ID
	if externalID == "" {
		externalID = "medium-post"
	}
	return PublishOutcome{ExternalID: externalID, URL: response.Data.URL, Message: "Published to Medium"}, nil
}
