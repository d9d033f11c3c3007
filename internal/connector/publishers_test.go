package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGitHubPublisher_CommitMode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/content":
			fmt.Fprint(w, `{"default_branch":"main"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/content/contents/posts/a.md":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/repos/acme/content/contents/posts/a.md":
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode commit payload: %v", err)
			}
			if payload["branch"] != "main" {
				t.Errorf("unexpected branch: %v", payload["branch"])
			}
			if _, hasSHA := payload["sha"]; hasSHA {
				t.Error("new file must not carry a sha")
			}
			fmt.Fprint(w, `{"commit":{"sha":"abc123","html_url":"https://github.com/acme/content/commit/abc123"}}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()

	publisher := NewGitHubPublisher("token", "acme/content", "commit", "")
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		ItemID:  "queue-1",
		Title:   "Post",
		Content: "# body",
		Path:    "posts/a.md",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "abc123" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
	if outcome.Message != "Published via commit" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestGitHubPublisher_PRMode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/acme/content/git/ref/heads/main":
			fmt.Fprint(w, `{"object":{"sha":"basesha"}}`)
		case r.URL.Path == "/repos/acme/content/git/refs":
			fmt.Fprint(w, `{}`)
		case strings.HasPrefix(r.URL.Path, "/repos/acme/content/contents/"):
			fmt.Fprint(w, `{}`)
		case r.URL.Path == "/repos/acme/content/pulls":
			fmt.Fprint(w, `{"number":7,"html_url":"https://github.com/acme/content/pull/7"}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()

	publisher := NewGitHubPublisher("token", "acme/content", "pr", "main")
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		ItemID:  "queue-2",
		Title:   "A Very Long Draft Title That Gets Truncated",
		Content: "body",
		Path:    "posts/b.md",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "pr-7" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
	if outcome.URL != "https://github.com/acme/content/pull/7" {
		t.Fatalf("unexpected url: %q", outcome.URL)
	}
}

func TestDevtoPublisher_Publish(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/articles" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "key" {
			t.Errorf("missing api-key header")
		}
		var payload struct {
			Article map[string]any `json:"article"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Article["canonical_url"] != "https://dev.to/acme" {
			t.Errorf("unexpected canonical url: %v", payload.Article["canonical_url"])
		}
		fmt.Fprint(w, `{"id":42,"url":"https://dev.to/acme/post-42"}`)
	}))
	defer server.Close()

	publisher := NewDevtoPublisher("key", nil)
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "Post",
		Content: "body",
		Target:  "acme",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "devto-42" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}

func TestRedditPublisher_Publish(t *testing.T) {
	t.Parallel()

	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/access_token" {
			t.Errorf("unexpected auth path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			t.Error("expected basic auth on token exchange")
		}
		fmt.Fprint(w, `{"access_token":"tok"}`)
	}))
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submit" {
			t.Errorf("unexpected api path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("sr") != "golang" || r.PostForm.Get("kind") != "self" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		fmt.Fprint(w, `{"json":{"errors":[],"data":{"name":"t3_xyz","url":"https://reddit.com/r/golang/t3_xyz"}}}`)
	}))
	defer api.Close()

	publisher := NewRedditPublisher("id", "secret", "refresh", "test/1.0")
	publisher.authBaseURL = auth.URL
	publisher.oauthBaseURL = api.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "Post",
		Content: "body",
		Target:  "r/golang",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "t3_xyz" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}

func TestRedditPublisher_RequiresValidSubreddit(t *testing.T) {
	t.Parallel()

	publisher := NewRedditPublisher("id", "secret", "refresh", "test/1.0")
	if _, err := publisher.PublishMarkdown(context.Background(), PublishRequest{Target: "no spaces allowed"}); err == nil {
		t.Fatal("expected subreddit validation error")
	}
}

func TestHashnodePublisher_Publish(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Variables struct {
				Input map[string]any `json:"input"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Variables.Input["publicationId"] != "pub-1" {
			t.Errorf("unexpected publication id: %v", payload.Variables.Input["publicationId"])
		}
		fmt.Fprint(w, `{"data":{"publishPost":{"post":{"id":"post-1","url":"https://blog.example/post-1"}}}}`)
	}))
	defer server.Close()

	publisher := NewHashnodePublisher("token")
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "Post",
		Content: "body",
		Target:  "pub-1",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "post-1" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}

func TestHashnodePublisher_GraphQLErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"unauthorized"}]}`)
	}))
	defer server.Close()

	publisher := NewHashnodePublisher("token")
	publisher.baseURL = server.URL

	_, err := publisher.PublishMarkdown(context.Background(), PublishRequest{Title: "Post", Target: "pub-1"})
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected graphql error, got %v", err)
	}
}

func TestMediumPublisher_Publish(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/me":
			fmt.Fprint(w, `{"data":{"id":"user-1"}}`)
		case "/v1/users/user-1/posts":
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			if payload["canonicalUrl"] != "https://example.org/origin" {
				t.Errorf("unexpected canonical url: %v", payload["canonicalUrl"])
			}
			fmt.Fprint(w, `{"data":{"id":"m-1","url":"https://medium.com/@acme/m-1"}}`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()

	publisher := NewMediumPublisher("token")
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "Post",
		Content: "body",
		Target:  "https://example.org/origin",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "m-1" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}

func TestLinkedInPublisher_UsesTargetURN(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/me" {
			t.Error("must not resolve member when target is already a urn")
		}
		if r.URL.Path != "/v2/ugcPosts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["author"] != "urn:li:person:42" {
			t.Errorf("unexpected author: %v", payload["author"])
		}
		fmt.Fprint(w, `{"id":"ugc-1"}`)
	}))
	defer server.Close()

	publisher := NewLinkedInPublisher("token")
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "Post",
		Content: "body",
		Target:  "urn:li:person:42",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "ugc-1" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}

func TestHFPublisher_CommitsToSpace(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/spaces/acme/demo/commit/main" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	publisher := NewHFPublisher("token", ChannelHFSpaces)
	publisher.baseURL = server.URL

	outcome, err := publisher.PublishMarkdown(context.Background(), PublishRequest{
		Title:   "My Post",
		Content: "body",
		Target:  "acme/demo",
	})
	if err != nil {
		t.Fatalf("PublishMarkdown: %v", err)
	}
	if outcome.ExternalID != "hf-space-acme/demo:brand-studio/my-post.md" {
		t.Fatalf("unexpected external id: %q", outcome.ExternalID)
	}
}
