package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	MinCacheTTLSeconds = 30
	MaxCacheTTLSeconds = 86400
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPHost string `envconfig:"BRAND_STUDIO_HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"BRAND_STUDIO_HTTP_PORT" default:"8098"`

	DiscoveryMode   string  `envconfig:"BRAND_STUDIO_DISCOVERY_MODE" default:"stub"`
	RSSFeedURLs     string  `envconfig:"BRAND_STUDIO_RSS_FEEDS" default:""`
	TopicKeywords   string  `envconfig:"BRAND_STUDIO_TOPIC_KEYWORDS" default:""`
	CacheTTLSeconds int     `envconfig:"BRAND_STUDIO_CACHE_TTL_SECONDS" default:"900"`
	MinScore        float64 `envconfig:"BRAND_STUDIO_MIN_SCORE" default:"0.3"`
	ResultLimit     int     `envconfig:"BRAND_STUDIO_RESULT_LIMIT" default:"50"`
	ActiveChannels  string  `envconfig:"BRAND_STUDIO_ACTIVE_CHANNELS" default:"x,github,blog"`
	DraftLanguages  string  `envconfig:"BRAND_STUDIO_DRAFT_LANGUAGES" default:"pl,en"`

	StateFile      string `envconfig:"BRAND_STUDIO_STATE_FILE" default:""`
	CandidatesFile string `envconfig:"BRAND_STUDIO_CANDIDATES_FILE" default:""`
	AccountsFile   string `envconfig:"BRAND_STUDIO_ACCOUNTS_FILE" default:""`

	DraftCacheTTLSeconds int `envconfig:"BRAND_STUDIO_DRAFT_CACHE_TTL_SECONDS" default:"86400"`
	LLMWorkers           int `envconfig:"BRAND_STUDIO_LLM_WORKERS" default:"3"`

	MonitoringSchedule string `envconfig:"BRAND_STUDIO_MONITORING_SCHEDULE" default:"@hourly"`

	DefaultTargetRepo string `envconfig:"BRAND_TARGET_REPO" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	scratch := filepath.Join(os.TempDir(), "brandstudio")
	if strings.TrimSpace(c.StateFile) == "" {
		c.StateFile = filepath.Join(scratch, "state.json")
	}
	if strings.TrimSpace(c.CandidatesFile) == "" {
		c.CandidatesFile = filepath.Join(scratch, "candidates.json")
	}
	if strings.TrimSpace(c.AccountsFile) == "" {
		c.AccountsFile = filepath.Join(scratch, "accounts.json")
	}

	if c.CacheTTLSeconds < MinCacheTTLSeconds {
		c.CacheTTLSeconds = MinCacheTTLSeconds
	}
	if c.CacheTTLSeconds > MaxCacheTTLSeconds {
		c.CacheTTLSeconds = MaxCacheTTLSeconds
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DiscoveryMode)) {
	case "stub", "live", "hybrid":
	default:
		return fmt.Errorf("BRAND_STUDIO_DISCOVERY_MODE must be one of stub, live, hybrid")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("BRAND_STUDIO_HTTP_PORT must be a valid port")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("BRAND_STUDIO_MIN_SCORE must be within [0, 1]")
	}
	if c.ResultLimit < 1 {
		return fmt.Errorf("BRAND_STUDIO_RESULT_LIMIT must be >= 1")
	}
	if c.DraftCacheTTLSeconds < 1 {
		return fmt.Errorf("BRAND_STUDIO_DRAFT_CACHE_TTL_SECONDS must be >= 1")
	}
	if c.LLMWorkers < 1 {
		return fmt.Errorf("BRAND_STUDIO_LLM_WORKERS must be >= 1")
	}
	return nil
}

func (c *Config) RSSFeedURLList() []string {
	return splitList(c.RSSFeedURLs)
}

func (c *Config) TopicKeywordList() []string {
	return splitList(c.TopicKeywords)
}

func (c *Config) ActiveChannelList() []string {
	return splitList(c.ActiveChannels)
}

func (c *Config) DraftLanguageList() []string {
	return splitList(c.DraftLanguages)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
