package studio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/audit"
	"horse.fit/brandstudio/internal/candidate"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/connector"
	"horse.fit/brandstudio/internal/globaltime"
	"horse.fit/brandstudio/internal/storage"
)

// SourceFetcher delivers raw items from all configured external sources.
type SourceFetcher interface {
	FetchAll(ctx context.Context, rssURLs []string) []candidate.RawItem
}

// TextGenerator is the LLM backend used for draft content.
type TextGenerator interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// AuditSink mirrors audit entries to an external collector, best effort.
type AuditSink interface {
	PublishEntry(entry audit.Entry) bool
}

// Dependencies carries everything a Service needs. Nil fields get safe
// defaults (in-memory stores, a registry with only the manual placeholder,
// no LLM, no audit sink).
type Dependencies struct {
	Logger          zerolog.Logger
	StateStore      storage.Store
	CandidatesStore storage.Store
	AccountsStore   storage.Store
	Sources         SourceFetcher
	Generator       TextGenerator
	AuditSink       AuditSink
	Registry        *connector.Registry
}

// Service owns all Brand Studio state: candidates, drafts, the publish
// queue, accounts, strategies and the audit log. One process-wide mutex
// guards every public method for its full duration, including persistence.
type Service struct {
	mu sync.Mutex

	cfg      *config.Config
	logger   zerolog.Logger
	registry *connector.Registry

	stateStore      storage.Store
	candidatesStore storage.Store
	accountsStore   storage.Store

	sources   SourceFetcher
	generator TextGenerator
	auditSink AuditSink

	candidates  []candidate.Candidate
	refreshedAt time.Time

	state    runtimeState
	accounts accountsState
}

// New builds a fully constructed service and restores any persisted state
// from the supplied stores.
func New(cfg *config.Config, deps Dependencies) *Service {
	if deps.StateStore == nil {
		deps.StateStore = storage.NewMemoryStore()
	}
	if deps.CandidatesStore == nil {
		deps.CandidatesStore = storage.NewMemoryStore()
	}
	if deps.AccountsStore == nil {
		deps.AccountsStore = storage.NewMemoryStore()
	}
	if deps.Registry == nil {
		registry := connector.NewRegistry()
		registry.Register(connector.ChannelX, connector.NewManualPlaceholderPublisher())
		deps.Registry = registry
	}

	s := &Service{
		cfg:             cfg,
		logger:          deps.Logger,
		registry:        deps.Registry,
		stateStore:      deps.StateStore,
		candidatesStore: deps.CandidatesStore,
		accountsStore:   deps.AccountsStore,
		sources:         deps.Sources,
		generator:       deps.Generator,
		auditSink:       deps.AuditSink,
	}
	s.restore()
	return s
}

func (s *Service) restore() {
	s.state = runtimeState{
		Drafts:     make(map[string]DraftBundle),
		DraftCache: make(map[string]draftCacheEntry),
	}
	if s.stateStore.Load(&s.state) {
		if s.state.Drafts == nil {
			s.state.Drafts = make(map[string]DraftBundle)
		}
		if s.state.DraftCache == nil {
			s.state.DraftCache = make(map[string]draftCacheEntry)
		}
	}
	s.ensureDefaultStrategy()

	s.accounts = make(accountsState)
	s.accountsStore.Load(&s.accounts)

	var cache candidatesCache
	if s.candidatesStore.Load(&cache) && len(cache.Items) > 0 {
		s.candidates = cache.Items
		s.refreshedAt = cache.RefreshedAt
	}
}

// ensureDefaultStrategy guarantees at least one strategy exists and the
// active pointer is valid. The default strategy mirrors the environment
// configuration.
func (s *Service) ensureDefaultStrategy() {
	if len(s.state.Strategies) == 0 {
		s.state.Strategies = []StrategyConfig{s.defaultStrategy()}
		s.state.ActiveStrategyID = s.state.Strategies[0].ID
		return
	}
	if s.findStrategy(s.state.ActiveStrategyID) == nil {
		s.state.ActiveStrategyID = s.lowestStrategyID()
	}
}

func (s *Service) defaultStrategy() StrategyConfig {
	return StrategyConfig{
		ID:              "default",
		Name:            "Default",
		DiscoveryMode:   strings.ToLower(strings.TrimSpace(s.cfg.DiscoveryMode)),
		RSSFeeds:        s.cfg.RSSFeedURLList(),
		TopicKeywords:   s.cfg.TopicKeywordList(),
		CacheTTLSeconds: s.cfg.CacheTTLSeconds,
		MinScore:        s.cfg.MinScore,
		Limit:           s.cfg.ResultLimit,
		ActiveChannels:  s.cfg.ActiveChannelList(),
		DraftLanguages:  s.cfg.DraftLanguageList(),
	}
}

func (s *Service) findStrategy(id string) *StrategyConfig {
	for i := range s.state.Strategies {
		if s.state.Strategies[i].ID == id {
			return &s.state.Strategies[i]
		}
	}
	return nil
}

func (s *Service) activeStrategy() *StrategyConfig {
	if strategy := s.findStrategy(s.state.ActiveStrategyID); strategy != nil {
		return strategy
	}
	// Should not happen after ensureDefaultStrategy; repair and continue.
	s.ensureDefaultStrategy()
	return s.findStrategy(s.state.ActiveStrategyID)
}

func (s *Service) lowestStrategyID() string {
	ids := make([]string, 0, len(s.state.Strategies))
	for _, strategy := range s.state.Strategies {
		ids = append(ids, strategy.ID)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (s *Service) persistState() {
	s.stateStore.Save(s.state)
}

func (s *Service) persistAccounts() {
	s.accountsStore.Save(s.accounts)
}

func (s *Service) persistCandidates() {
	s.candidatesStore.Save(candidatesCache{RefreshedAt: s.refreshedAt, Items: s.candidates})
}

// appendAudit records one append-only entry and mirrors it to the external
// sink. Callers persist the state snapshot afterwards.
func (s *Service) appendAudit(actor, action, status, payload, details string) {
	entry := audit.NewEntry(actor, action, status, payload, details)
	s.state.Audit = append(s.state.Audit, entry)
	if s.auditSink != nil {
		s.auditSink.PublishEntry(entry)
	}
}

// AuditItems returns the audit log newest-first.
func (s *Service) AuditItems() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]audit.Entry, len(s.state.Audit))
	for i, entry := range s.state.Audit {
		items[len(items)-1-i] = entry
	}
	return items
}

// HealthPayload reports liveness for the HTTP surface and the CLI.
func (s *Service) HealthPayload() map[string]string {
	return map[string]string{"status": "ok", "module": "brand_studio"}
}

func nowUTC() time.Time {
	return globaltime.UTC()
}
