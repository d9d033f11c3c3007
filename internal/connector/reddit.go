package connector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var subredditPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// RedditPublisher submits self posts via OAuth with a refresh token grant.
type RedditPublisher struct {
	httpClient   *http.Client
	authBaseURL  string
	oauthBaseURL string
	clientID     string
	clientSecret string
	refreshToken string
	userAgent    string
}

func NewRedditPublisher(clientID, clientSecret, refreshToken, userAgent string) *RedditPublisher {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "brandstudio/1.0 by /u/brand_studio"
	}
	return &RedditPublisher{
		httpClient:   newHTTPClient(),
		authBaseURL:  "https://www.reddit.com",
		oauthBaseURL: "https://oauth.reddit.com",
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		userAgent:    userAgent,
	}
}

func NewRedditPublisherFromEnv() *RedditPublisher {
	clientID := envValue("REDDIT_CLIENT_ID")
	clientSecret := envValue("REDDIT_CLIENT_SECRET")
	refreshToken := envValue("REDDIT_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil
	}
	return NewRedditPublisher(clientID, clientSecret, refreshToken, envValue("REDDIT_USER_AGENT"))
}

func (p *RedditPublisher) Name() string { return "reddit" }

func (p *RedditPublisher) accessToken(ctx context.Context) (string, error) {
	basicAuth := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.refreshToken},
	}
	headers := map[string]string{
		"Authorization": "Basic " + basicAuth,
		"User-Agent":    p.userAgent,
	}

	var response struct {
		AccessToken string `json:"access_token"`
	}
	tokenURL := p.authBaseURL + "/api/v1/access_token"
	if err := doForm(ctx, p.httpClient, tokenURL, headers, form, &response); err != nil {
		return "", fmt.Errorf("reddit token exchange: %w", err)
	}
	token := strings.TrimSpace(response.AccessToken)
	if token == "" {
		return "", fmt.Errorf("reddit token exchange: missing access_token in response")
	}
	return token, nil
}

func (p *RedditPublisher) ValidateConnection(ctx context.Context) error {
	token, err := p.accessToken(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"Authorization": "bearer " + token,
		"User-Agent":    p.userAgent,
	}
	if err := doJSON(ctx, p.httpClient, http.MethodGet, p.oauthBaseURL+"/api/v1/me", headers, nil, nil); err != nil {
		return fmt.Errorf("reddit identity lookup: %w", err)
	}
	return nil
}

func (p *RedditPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	subreddit := normalizeSubreddit(req.Target)
	if subreddit == "" {
		return PublishOutcome{}, fmt.Errorf("reddit publish: valid subreddit target is required")
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return PublishOutcome{}, err
	}
	headers := map[string]string{
		"Authorization": "bearer " + token,
		"User-Agent":    p.userAgent,
	}
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"self"},
		"sr":       {subreddit},
		"title":    {truncateRunes(req.Title, 300)},
		"text":     {req.Content},
	}

	var response struct {
		JSON struct {
			Errors [][]any `json:"errors"`
			Data   struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := doForm(ctx, p.httpClient, p.oauthBaseURL+"/api/submit", headers, form, &response); err != nil {
		return PublishOutcome{}, fmt.Errorf("reddit publish: %w", err)
	}
	if len(response.JSON.Errors) > 0 {
		return PublishOutcome{}, fmt.Errorf("reddit publish returned errors: %v", response.JSON.Errors)
	}

	externalID := response.JSON.Data.Name
	if externalID == "" {
		externalID = "reddit-post"
	}
	return PublishOutcome{
		ExternalID: externalID,
		URL:        response.JSON.Data.URL,
		Message:    "Published to Reddit r/" + subreddit,
	}, nil
}

// normalizeSubreddit strips an optional r/ prefix and rejects anything
// outside lowercase slug characters.
func normalizeSubreddit(target string) string {
	value := strings.ToLower(strings.TrimSpace(target))
	value = strings.TrimPrefix(value, "r/")
	if value == "" || !subredditPattern.MatchString(value) {
		return ""
	}
	return value
}
