package studio

import (
	"time"

	"horse.fit/brandstudio/internal/audit"
	"horse.fit/brandstudio/internal/candidate"
)

// Publish statuses a queue item can carry.
const (
	StatusDraft     = "draft"
	StatusReady     = "ready"
	StatusQueued    = "queued"
	StatusPublished = "published"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Publish modes.
const (
	PublishModeManual = "manual"
	PublishModeAuto   = "auto"
)

// Account roles.
const (
	RolePrimary    = "primary"
	RoleSupporting = "supporting"
)

// DraftVariant is one piece of generated content for a (channel, language)
// pair. AccountID is empty for the primary variant and set for supporting
// teasers tied to a specific supporting account.
type DraftVariant struct {
	Channel   string `json:"channel"`
	Language  string `json:"language"`
	Content   string `json:"content"`
	AccountID string `json:"account_id,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// DraftBundle is one generation event: all variants produced from a single
// candidate, immutable once stored.
type DraftBundle struct {
	DraftID     string         `json:"draft_id"`
	CandidateID string         `json:"candidate_id"`
	Variants    []DraftVariant `json:"variants"`
	CampaignID  string         `json:"campaign_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// PublishQueueItem is one publish intent bound to a draft variant, channel,
// account and target.
type PublishQueueItem struct {
	ItemID         string     `json:"item_id"`
	DraftID        string     `json:"draft_id"`
	TargetChannel  string     `json:"target_channel"`
	TargetLanguage string     `json:"target_language,omitempty"`
	Target         string     `json:"target,omitempty"`
	TargetRepo     string     `json:"target_repo,omitempty"` // deprecated alias of Target
	TargetPath     string     `json:"target_path,omitempty"`
	AccountID      string     `json:"account_id,omitempty"`
	AccountName    string     `json:"account_name,omitempty"`
	Title          string     `json:"title"`
	Payload        string     `json:"payload"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CampaignID     string     `json:"campaign_id,omitempty"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	PublishMode    string     `json:"publish_mode"`
}

// PublishResult is the outcome of one publish attempt. Failure is data, not
// control flow: connector errors land in Message, never as returned errors.
type PublishResult struct {
	Success     bool       `json:"success"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExternalID  string     `json:"external_id,omitempty"`
	URL         string     `json:"url,omitempty"`
	Message     string     `json:"message"`
}

// AccountTestResult is the stored outcome of the last connection test.
type AccountTestResult struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	TestedAt time.Time `json:"tested_at"`
}

// LastPublish snapshots the most recent publish attempt through an account.
type LastPublish struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	PublishedAt time.Time `json:"published_at"`
}

// ChannelAccount binds a named identity/target to one channel.
type ChannelAccount struct {
	AccountID           string             `json:"account_id"`
	Channel             string             `json:"channel"`
	DisplayName         string             `json:"display_name"`
	Target              string             `json:"target,omitempty"`
	Enabled             bool               `json:"enabled"`
	IsDefault           bool               `json:"is_default"`
	Role                string             `json:"role"`
	SupportsAccountID   string             `json:"supports_account_id,omitempty"`
	SecretStatus        string             `json:"secret_status,omitempty"`
	Capabilities        []string           `json:"capabilities,omitempty"`
	LastTest            *AccountTestResult `json:"last_test,omitempty"`
	SuccessfulPublishes int                `json:"successful_publishes"`
	FailedPublishes     int                `json:"failed_publishes"`
	LastPublish         *LastPublish       `json:"last_publish,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// StrategyConfig is a named bundle of discovery/ranking/channel parameters.
// Exactly one strategy is active at a time.
type StrategyConfig struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	DiscoveryMode   string            `json:"discovery_mode"`
	RSSFeeds        []string          `json:"rss_feeds,omitempty"`
	TopicKeywords   []string          `json:"topic_keywords,omitempty"`
	CacheTTLSeconds int               `json:"cache_ttl_seconds"`
	MinScore        float64           `json:"min_score"`
	Limit           int               `json:"limit"`
	ActiveChannels  []string          `json:"active_channels"`
	DraftLanguages  []string          `json:"draft_languages"`
	DefaultAccounts map[string]string `json:"default_accounts,omitempty"`
}

// draftCacheEntry points a content-addressed draft key at a stored bundle.
type draftCacheEntry struct {
	DraftID  string    `json:"draft_id"`
	CachedAt time.Time `json:"cached_at"`
}

// runtimeState is the persisted snapshot of everything except candidates and
// accounts, which live in their own files.
type runtimeState struct {
	Drafts           map[string]DraftBundle     `json:"drafts"`
	DraftCache       map[string]draftCacheEntry `json:"draft_cache"`
	Queue            []PublishQueueItem         `json:"queue"`
	Audit            []audit.Entry              `json:"audit"`
	Strategies       []StrategyConfig           `json:"strategies"`
	ActiveStrategyID string                     `json:"active_strategy_id"`
}

// candidatesCache is the persisted candidate snapshot.
type candidatesCache struct {
	RefreshedAt time.Time             `json:"refreshed_at"`
	Items       []candidate.Candidate `json:"items"`
}

// accountsState maps channel name to its account list.
type accountsState map[string][]ChannelAccount
