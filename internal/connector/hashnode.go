package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const hashnodePublishMutation = `
mutation PublishPost($input: PublishPostInput!) {
  publishPost(input: $input) {
    post {
      id
      slug
      url
    }
  }
}`

// HashnodePublisher publishes posts through the Hashnode GraphQL API.
// The queue target must carry the publication id.
type HashnodePublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewHashnodePublisher(token string) *HashnodePublisher {
	return &HashnodePublisher{
		httpClient: newHTTPClient(),
		baseURL:    "https://gql.hashnode.com",
		token:      token,
	}
}

func NewHashnodePublisherFromEnv() *HashnodePublisher {
	token := envValue("HASHNODE_TOKEN")
	if token == "" {
		return nil
	}
	return NewHashnodePublisher(token)
}

func (p *HashnodePublisher) Name() string { return "hashnode" }

type hashnodeResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (p *HashnodePublisher) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	payload := map[string]any{"query": query, "variables": variables}
	headers := map[string]string{"Authorization": p.token}

	var response hashnodeResponse
	if err := doJSON(ctx, p.httpClient, http.MethodPost, p.baseURL, headers, payload, &response); err != nil {
		return err
	}
	if len(response.Errors) > 0 {
		messages := make([]string, 0, len(response.Errors))
		for _, gqlError := range response.Errors {
			messages = append(messages, gqlError.Message)
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}
	if out == nil {
		return nil
	}
	if len(response.Data) == 0 {
		return fmt.Errorf("missing data in response")
	}
	return json.Unmarshal(response.Data, out)
}

func (p *HashnodePublisher) ValidateConnection(ctx context.Context) error {
	if err := p.graphql(ctx, "query { me { username } }", nil, nil); err != nil {
		return fmt.Errorf("hashnode me query: %w", err)
	}
	return nil
}

func (p *HashnodePublisher) PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error) {
	publicationID := strings.TrimSpace(req.Target)
	if publicationID == "" {
		return PublishOutcome{}, fmt.Errorf("hashnode publish: publication id is required as target")
	}

	variables := map[string]any{
		"input": map[string]any{
			"title":           truncateRunes(req.Title, 120),
			"contentMarkdown": req.Content,
			"publicationId":   publicationID,
		},
	}

	var data struct {
		PublishPost struct {
			Post *struct {
				ID  string `json:"id"`
				URL string `json:"url"`
			} `json:"post"`
		} `json:"publishPost"`
	}
	if err := p.graphql(ctx, hashnodePublishMutation, variables, &data); err != nil {
		return PublishOutcome{}, fmt.Errorf("hashnode publish: %w", err)
	}
	if data.PublishPost.Post == nil {
		return PublishOutcome{}, fmt.Errorf("hashnode publish: missing publishPost.post in response")
	}

	externalID := data.PublishPost.Post.ID
	if externalID == "" {
		externalID = "hashnode-post"
	}
	return PublishOutcome{ExternalID: externalID, URL: data.PublishPost.Post.URL, Message: "Published to Hashnode"}, nil
}
