package connector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const (
	githubModeCommit = "commit"
	githubModePR     = "pr"
)

// GitHubPublisher commits markdown to a content repository, either directly
// on the base branch or through a pull request. It backs both the github and
// blog channels.
type GitHubPublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
	targetRepo string
	mode       string
	baseBranch string
}

func NewGitHubPublisher(token, targetRepo, mode, baseBranch string) *GitHubPublisher {
	normalizedMode := strings.ToLower(strings.TrimSpace(mode))
	if normalizedMode != githubModePR {
		normalizedMode = githubModeCommit
	}
	return &GitHubPublisher{
		httpClient: newHTTPClient(),
		baseURL:    "https://api.github.com",
		token:      token,
		targetRepo: targetRepo,
		mode:       normalizedMode,
		baseBranch: strings.TrimSpace(baseBranch),
	}
}

func NewGitHubPublisherFromEnv() *GitHubPublisher {
	token := envValue("GITHUB_TOKEN_BRAND")
	repo := envValue("BRAND_TARGET_REPO")
	if token == "" || repo == "" {
		return nil
	}
	return NewGitHubPublisher(token, repo, envValue("BRAND_GITHUB_PUBLISH_MODE"), envValue("BRAND_GITHUB_BASE_BRANCH"))
}

func (p *GitHubPublisher) Name() string { return "github" }

func (p *GitHubPublisher) headers() map[string]string {
	return map[string]string{
		"Authorization":        "Bearer " + p.token,
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
}

func (p *GitHubPublisher) ValidateConnection(ctx context.Context) error {
	repoURL := fmt.Sprintf("%s/repos/%s", p.baseURL, p.targetRepo)
	if err := doJSON(ctx, p.httpClient, http.MethodGet, repoURL, p.headers(), nil, nil); err != nil {
		return fmt.Errorf("github repo lookup: %w", err)
	}
	return nil
}

func (p *GitHubPublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	if p.mode == githubModePR {
		return p.publishViaPR(ctx, req)
	}
	return p.publishViaCommit(ctx, req)
}

func (p *GitHubPublisher) resolveBaseBranch(ctx context.Context) (string, error) {
	if p.baseBranch != "" {
		return p.baseBranch, nil
	}
	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	repoURL := fmt.Sprintf("%s/repos/%s", p.baseURL, p.targetRepo)
	if err := doJSON(ctx, p.httpClient, http.MethodGet, repoURL, p.headers(), nil, &repo); err != nil {
		return "", fmt.Errorf("github repo lookup: %w", err)
	}
	if repo.DefaultBranch == "" {
		return "main", nil
	}
	return repo.DefaultBranch, nil
}

type githubContentResponse struct {
	Commit struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
	Content struct {
		HTMLURL string `json:"html_url"`
	} `json:"content"`
}

func (p *GitHubPublisher) publishViaCommit(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	branch, err := p.resolveBaseBranch(ctx)
	if err != nil {
		return PublishOutcome{}, err
	}
	contentURL := fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, p.targetRepo, req.Path)

	// An existing file must be updated with its blob sha.
	var existing struct {
		SHA string `json:"sha"`
	}
	existingSHA := ""
	if err := doJSON(ctx, p.httpClient, http.MethodGet, contentURL+"?ref="+branch, p.headers(), nil, &existing); err == nil {
		existingSHA = existing.SHA
	}

	payload := map[string]any{
		"message": "brand-studio: " + req.Title,
		"content": base64.StdEncoding.EncodeToString([]byte(req.Content)),
		"branch":  branch,
	}
	if existingSHA != "" {
		payload["sha"] = existingSHA
	}

	var published githubContentResponse
	if err := doJSON(ctx, p.httpClient, http.MethodPut, contentURL, p.headers(), payload, &published); err != nil {
		return PublishOutcome{}, fmt.Errorf("github commit: %w", err)
	}

	externalID := published.Commit.SHA
	if externalID == "" {
		externalID = "commit"
	}
	publishedURL := published.Commit.HTMLURL
	if publishedURL == "" {
		publishedURL = published.Content.HTMLURL
	}
	return PublishOutcome{ExternalID: externalID, URL: publishedURL, Message: "Published via commit"}, nil
}

func (p *GitHubPublisher) publishViaPR(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	branch, err := p.resolveBaseBranch(ctx)
	if err != nil {
		return PublishOutcome{}, err
	}

	var ref struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	refURL := fmt.Sprintf("%s/repos/%s/git/ref/heads/%s", p.baseURL, p.targetRepo, branch)
	if err := doJSON(ctx, p.httpClient, http.MethodGet, refURL, p.headers(), nil, &ref); err != nil {
		return PublishOutcome{}, fmt.Errorf("github base ref: %w", err)
	}
	if ref.Object.SHA == "" {
		return PublishOutcome{}, fmt.Errorf("github base ref: cannot resolve sha for branch %q", branch)
	}

	prBranch := "brand-studio-" + truncateRunes(strings.ReplaceAll(strings.ToLower(req.Title), " ", "-"), 24)
	refsURL := fmt.Sprintf("%s/repos/%s/git/refs", p.baseURL, p.targetRepo)
	createRef := map[string]any{"ref": "refs/heads/" + prBranch, "sha": ref.Object.SHA}
	if err := doJSON(ctx, p.httpClient, http.MethodPost, refsURL, p.headers(), createRef, nil); err != nil {
		return PublishOutcome{}, fmt.Errorf("github create branch: %w", err)
	}

	contentURL := fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, p.targetRepo, req.Path)
	commitPayload := map[string]any{
		"message": "brand-studio: " + req.Title,
		"content": base64.StdEncoding.EncodeToString([]byte(req.Content)),
		"branch":  prBranch,
	}
	if err := doJSON(ctx, p.httpClient, http.MethodPut, contentURL, p.headers(), commitPayload, nil); err != nil {
		return PublishOutcome{}, fmt.Errorf("github commit to branch: %w", err)
	}

	var pr struct {
		Number  int64  `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	pullsURL := fmt.Sprintf("%s/repos/%s/pulls", p.baseURL, p.targetRepo)
	prPayload := map[string]any{
		"title": "Brand Studio: " + req.Title,
		"head":  prBranch,
		"base":  branch,
		"body":  "Automated draft publication from Brand Studio.",
	}
	if err := doJSON(ctx, p.httpClient, http.MethodPost, pullsURL, p.headers(), prPayload, &pr); err != nil {
		return PublishOutcome{}, fmt.Errorf("github open pr: %w", err)
	}

	externalID := "pr"
	if pr.Number > 0 {
		externalID = fmt.Sprintf("pr-%d", pr.Number)
	}
	return PublishOutcome{ExternalID: externalID, URL: pr.HTMLURL, Message: "Published via pull request"}, nil
}
