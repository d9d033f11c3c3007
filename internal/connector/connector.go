package connector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Channel names understood by the publish dispatcher.
const (
	ChannelX        = "x"
	ChannelGitHub   = "github"
	ChannelBlog     = "blog"
	ChannelDevto    = "devto"
	ChannelReddit   = "reddit"
	ChannelHashnode = "hashnode"
	ChannelLinkedIn = "linkedin"
	ChannelMedium   = "medium"
	ChannelHFBlog   = "hf_blog"
	ChannelHFSpaces = "hf_spaces"
)

var (
	// ErrNotConfigured marks a known channel whose credentials are absent.
	ErrNotConfigured = errors.New("publisher not configured")
	// ErrNotImplemented marks a channel with no connector at all.
	ErrNotImplemented = errors.New("connector not implemented")
)

// credentialHints names the env vars a channel needs, quoted in
// not-configured failures so operators know what to set.
var credentialHints = map[string]string{
	ChannelGitHub:   "GITHUB_TOKEN_BRAND and BRAND_TARGET_REPO",
	ChannelBlog:     "GITHUB_TOKEN_BRAND and BRAND_TARGET_REPO",
	ChannelDevto:    "DEVTO_API_KEY",
	ChannelReddit:   "REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET and REDDIT_REFRESH_TOKEN",
	ChannelHashnode: "HASHNODE_TOKEN",
	ChannelLinkedIn: "LINKEDIN_ACCESS_TOKEN",
	ChannelMedium:   "MEDIUM_TOKEN",
	ChannelHFBlog:   "HF_TOKEN",
	ChannelHFSpaces: "HF_TOKEN",
}

// PublishRequest carries one resolved queue item into a publisher.
type PublishRequest struct {
	ItemID  string
	Title   string
	Content string
	Target  string // repo, subreddit, publication id, author urn, ...
	Path    string // file path for repo-backed channels
}

// PublishOutcome is the uniform success payload of a publish call.
type PublishOutcome struct {
	ExternalID string
	URL        string
	Message    string
}

// Publisher is the per-channel publish capability.
type Publisher interface {
	Name() string
	PublishMarkdown(ctx context.Context, req PublishRequest) (PublishOutcome, error)
	ValidateConnection(ctx context.Context) error
}

// Registry maps channels to publishers. Built once at construction; lookups
// always return a publisher, with explicit not-configured / unimplemented
// variants instead of conditional fallthrough at the call site.
type Registry struct {
	publishers map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

// NewRegistryFromEnv wires every channel whose credentials are present.
// The x channel always resolves to the manual placeholder.
func NewRegistryFromEnv() *Registry {
	registry := NewRegistry()
	registry.Register(ChannelX, NewManualPlaceholderPublisher())

	if publisher := NewGitHubPublisherFromEnv(); publisher != nil {
		registry.Register(ChannelGitHub, publisher)
		registry.Register(ChannelBlog, publisher)
	}
	if publisher := NewDevtoPublisherFromEnv(); publisher != nil {
		registry.Register(ChannelDevto, publisher)
	}
	if publisher := NewRedditPublisherFromEnv(); publisher != nil {
		registry.Register(ChannelReddit, publisher)
	}
	if publisher := NewHashnodePublisherFromEnv(); publisher != nil {
		registry.Register(ChannelHashnode, publisher)
	}
	if publisher := NewLinkedInPublisherFromEnv(); publisher != nil {
		registry.Register(ChannelLinkedIn, publisher)
	}
	if publisher := NewMediumPublisherFromEnv(); publisher != nil {
		registry.Register(ChannelMedium, publisher)
	}
	if publisher := NewHFPublisherFromEnv(ChannelHFBlog); publisher != nil {
		registry.Register(ChannelHFBlog, publisher)
	}
	if publisher := NewHFPublisherFromEnv(ChannelHFSpaces); publisher != nil {
		registry.Register(ChannelHFSpaces, publisher)
	}
	return registry
}

func (r *Registry) Register(channel string, publisher Publisher) {
	r.publishers[normalizeChannel(channel)] = publisher
}

// Resolve never returns nil: unconfigured known channels get a
// NotConfiguredPublisher, unknown channels an UnimplementedPublisher.
func (r *Registry) Resolve(channel string) Publisher {
	normalized := normalizeChannel(channel)
	if publisher, ok := r.publishers[normalized]; ok {
		return publisher
	}
	if hint, known := credentialHints[normalized]; known {
		return &NotConfiguredPublisher{Channel: normalized, EnvHint: hint}
	}
	return &UnimplementedPublisher{Channel: normalized}
}

// Configured reports whether a real publisher is registered for channel.
func (r *Registry) Configured(channel string) bool {
	_, ok := r.publishers[normalizeChannel(channel)]
	return ok
}

// Channels lists every channel the dispatcher understands, configured or not.
func (r *Registry) Channels() []string {
	seen := map[string]struct{}{ChannelX: {}}
	for channel := range credentialHints {
		seen[channel] = struct{}{}
	}
	for channel := range r.publishers {
		seen[channel] = struct{}{}
	}
	channels := make([]string, 0, len(seen))
	for channel := range seen {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

// ManualPlaceholderPublisher stands in for the x channel, which has no real
// connector yet: every publish is recorded as manually done. Deliberate MVP
// behavior, kept so the synthetic external id stays recognizable.
type ManualPlaceholderPublisher struct{}

func NewManualPlaceholderPublisher() *ManualPlaceholderPublisher {
	return &ManualPlaceholderPublisher{}
}

func (p *ManualPlaceholderPublisher) Name() string { return "manual-placeholder" }

func (p *ManualPlaceholderPublisher) PublishMarkdown(_ context.Context, req PublishRequest) (PublishOutcome, error) {
	return PublishOutcome{
		ExternalID: "manual-" + req.ItemID,
		Message:    "Marked as published; post the content to X manually (no connector wired)",
	}, nil
}

func (p *ManualPlaceholderPublisher) ValidateConnection(context.Context) error { return nil }

// NotConfiguredPublisher represents a known channel without credentials.
type NotConfiguredPublisher struct {
	Channel string
	EnvHint string
}

func (p *NotConfiguredPublisher) Name() string { return p.Channel + "-not-configured" }

func (p *NotConfiguredPublisher) PublishMarkdown(context.Context, PublishRequest) (PublishOutcome, error) {
	return PublishOutcome{}, fmt.Errorf("%s publisher is not configured, set %s: %w", p.Channel, p.EnvHint, ErrNotConfigured)
}

func (p *NotConfiguredPublisher) ValidateConnection(context.Context) error {
	return fmt.Errorf("%s publisher is not configured, set %s: %w", p.Channel, p.EnvHint, ErrNotConfigured)
}

// UnimplementedPublisher represents a channel nothing is wired for.
// Channels must be added explicitly; there is no silent success.
type UnimplementedPublisher struct {
	Channel string
}

func (p *UnimplementedPublisher) Name() string { return p.Channel + "-unimplemented" }

func (p *UnimplementedPublisher) PublishMarkdown(context.Context, PublishRequest) (PublishOutcome, error) {
	return PublishOutcome{}, fmt.Errorf("%s: %w", p.Channel, ErrNotImplemented)
}

func (p *UnimplementedPublisher) ValidateConnection(context.Context) error {
	return fmt.Errorf("%s: %w", p.Channel, ErrNotImplemented)
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimSpace(channel))
}
