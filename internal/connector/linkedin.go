package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// LinkedInPublisher shares content as a UGC post. Markdown is posted as-is in
// the share commentary since LinkedIn has no markdown surface.
type LinkedInPublisher struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewLinkedInPublisher(accessToken string) *LinkedInPublisher {
	return &LinkedInPublisher{
		httpClient:  newHTTPClient(),
		baseURL:     "https://api.linkedin.com",
		accessToken: accessToken,
	}
}

func NewLinkedInPublisherFromEnv() *LinkedInPublisher {
	accessToken := envValue("LINKEDIN_ACCESS_TOKEN")
	if accessToken == "" {
		return nil
	}
	return NewLinkedInPublisher(accessToken)
}

func (p *LinkedInPublisher) Name() string { return "linkedin" }

func (p *LinkedInPublisher) headers() map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + p.accessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}
}

// authorURN uses the target when it already is a URN, otherwise resolves the
// authenticated member.
func (p *LinkedInPublisher) authorURN(ctx context.Context, target string) (string, error) {
	trimmed := strings.TrimSpace(target)
	if strings.HasPrefix(trimmed, "urn:li:") {
		return trimmed, nil
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/v2/me", p.headers(), nil, &me); err != nil {
		return "", fmt.Errorf("linkedin me lookup: %w", err)
	}
	if strings.TrimSpace(me.ID) == "" {
		return "", fmt.Errorf("linkedin me lookup: missing member id in response")
	}
	return "urn:li:person:" + me.ID, nil
}

func (p *LinkedInPublisher) ValidateConnection(ctx context.Context) error {
	if err := doJSON(ctx, p.httpClient, http.MethodGet, p.baseURL+"/v2/me", p.headers(), nil, nil); err != nil {
		return fmt.Errorf("linkedin me lookup: %w", err)
	}
	return nil
}

func (p *LinkedInPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	authorURN, err := p.authorURN(ctx, req.Target)
	if err != nil {
		return PublishOutcome{}, err
	}

	payload := map[string]any{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": strings.TrimSpace(req.Title + "\n\n" + req.Content)},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL+"/v2/ugcPosts", p.headers(), payload, &response); err != nil {
		return PublishOutcome{}, fmt.Errorf("linkedin publish: %w", err)
	}

	externalID := response.ID
	if externalID == "" {
		externalID = "linkedin-post"
	}
	return PublishOutcome{ExternalID: externalID, Message: "Published to LinkedIn"}, nil
}
