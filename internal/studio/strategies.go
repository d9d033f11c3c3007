package studio

import (
	"strings"

	"horse.fit/brandstudio/internal/config"
)

// StrategyPatch is a partial update: only non-nil fields are applied.
type StrategyPatch struct {
	Name            *string            `json:"name,omitempty"`
	DiscoveryMode   *string            `json:"discovery_mode,omitempty"`
	RSSFeeds        *[]string          `json:"rss_feeds,omitempty"`
	TopicKeywords   *[]string          `json:"topic_keywords,omitempty"`
	CacheTTLSeconds *int               `json:"cache_ttl_seconds,omitempty"`
	MinScore        *float64           `json:"min_score,omitempty"`
	Limit           *int               `json:"limit,omitempty"`
	ActiveChannels  *[]string          `json:"active_channels,omitempty"`
	DraftLanguages  *[]string          `json:"draft_languages,omitempty"`
	DefaultAccounts *map[string]string `json:"default_accounts,omitempty"`
}

// CreateStrategyRequest clones a base strategy (explicit id or the active
// one) and applies the patch on top.
type CreateStrategyRequest struct {
	Name           string
	BaseStrategyID string
	Patch          StrategyPatch
	Actor          string
}

// Strategies returns all strategies plus the active id.
func (s *Service) Strategies() ([]StrategyConfig, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strategies := make([]StrategyConfig, len(s.state.Strategies))
	copy(strategies, s.state.Strategies)
	return strategies, s.state.ActiveStrategyID
}

// ActiveConfig returns a copy of the active strategy.
func (s *Service) ActiveConfig() StrategyConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.activeStrategy()
}

// UpdateActiveConfig partially updates the active strategy.
func (s *Service) UpdateActiveConfig(patch StrategyPatch, actor string) (StrategyConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStrategyLocked(s.state.ActiveStrategyID, patch, actor)
}

func (s *Service) CreateStrategy(req CreateStrategyRequest) (StrategyConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.activeStrategy()
	if req.BaseStrategyID != "" {
		base = s.findStrategy(req.BaseStrategyID)
		if base == nil {
			return StrategyConfig{}, notFound(KindStrategy, req.BaseStrategyID)
		}
	}

	strategy := cloneStrategy(*base)
	strategy.ID = newID("strat")
	if name := strings.TrimSpace(req.Name); name != "" {
		strategy.Name = name
	}
	if err := applyStrategyPatch(&strategy, req.Patch); err != nil {
		return StrategyConfig{}, err
	}

	s.state.Strategies = append(s.state.Strategies, strategy)
	s.appendAudit(req.Actor, "strategy.create", "ok", strategy.ID, strategy.Name)
	s.persistState()
	return strategy, nil
}

func (s *Service) UpdateStrategy(id string, patch StrategyPatch, actor string) (StrategyConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStrategyLocked(id, patch, actor)
}

func (s *Service) updateStrategyLocked(id string, patch StrategyPatch, actor string) (StrategyConfig, error) {
	strategy := s.findStrategy(id)
	if strategy == nil {
		return StrategyConfig{}, notFound(KindStrategy, id)
	}

	// Patch a clone; the stored strategy only changes when the whole
	// patch validates.
	updated := cloneStrategy(*strategy)
	if err := applyStrategyPatch(&updated, patch); err != nil {
		return StrategyConfig{}, err
	}
	*strategy = updated

	s.appendAudit(actor, "strategy.update", "ok", id, strategy.Name)
	s.persistState()
	return *strategy, nil
}

// DeleteStrategy removes a strategy. The store never reaches zero
// strategies; deleting the active one repoints to the lowest remaining id.
func (s *Service) DeleteStrategy(id, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findStrategy(id) == nil {
		return notFound(KindStrategy, id)
	}
	if len(s.state.Strategies) == 1 {
		return conflict(KindLastStrategy, "the last remaining strategy cannot be deleted")
	}

	remaining := make([]StrategyConfig, 0, len(s.state.Strategies)-1)
	for _, strategy := range s.state.Strategies {
		if strategy.ID != id {
			remaining = append(remaining, strategy)
		}
	}
	s.state.Strategies = remaining
	if s.state.ActiveStrategyID == id {
		s.state.ActiveStrategyID = s.lowestStrategyID()
	}

	s.appendAudit(actor, "strategy.delete", "ok", id, "active is now "+s.state.ActiveStrategyID)
	s.persistState()
	return nil
}

func (s *Service) ActivateStrategy(id, actor string) (StrategyConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strategy := s.findStrategy(id)
	if strategy == nil {
		return StrategyConfig{}, notFound(KindStrategy, id)
	}
	s.state.ActiveStrategyID = id

	s.appendAudit(actor, "strategy.activate", "ok", id, strategy.Name)
	s.persistState()
	return *strategy, nil
}

func cloneStrategy(strategy StrategyConfig) StrategyConfig {
	strategy.RSSFeeds = append([]string(nil), strategy.RSSFeeds...)
	strategy.TopicKeywords = append([]string(nil), strategy.TopicKeywords...)
	strategy.ActiveChannels = append([]string(nil), strategy.ActiveChannels...)
	strategy.DraftLanguages = append([]string(nil), strategy.DraftLanguages...)
	accounts := make(map[string]string, len(strategy.DefaultAccounts))
	for channel, accountID := range strategy.DefaultAccounts {
		accounts[channel] = accountID
	}
	strategy.DefaultAccounts = accounts
	return strategy
}

func applyStrategyPatch(strategy *StrategyConfig, patch StrategyPatch) error {
	if patch.Name != nil {
		strategy.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.DiscoveryMode != nil {
		mode := strings.ToLower(strings.TrimSpace(*patch.DiscoveryMode))
		switch mode {
		case DiscoveryStub, DiscoveryLive, DiscoveryHybrid:
			strategy.DiscoveryMode = mode
		default:
			return conflict(KindInvalidInput, "discovery_mode must be one of stub, live, hybrid")
		}
	}
	if patch.RSSFeeds != nil {
		strategy.RSSFeeds = append([]string(nil), (*patch.RSSFeeds)...)
	}
	if patch.TopicKeywords != nil {
		strategy.TopicKeywords = append([]string(nil), (*patch.TopicKeywords)...)
	}
	if patch.CacheTTLSeconds != nil {
		ttl := *patch.CacheTTLSeconds
		if ttl < config.MinCacheTTLSeconds {
			ttl = config.MinCacheTTLSeconds
		}
		if ttl > config.MaxCacheTTLSeconds {
			ttl = config.MaxCacheTTLSeconds
		}
		strategy.CacheTTLSeconds = ttl
	}
	if patch.MinScore != nil {
		if *patch.MinScore < 0 || *patch.MinScore > 1 {
			return conflict(KindInvalidInput, "min_score must be within [0, 1]")
		}
		strategy.MinScore = *patch.MinScore
	}
	if patch.Limit != nil {
		if *patch.Limit < 1 {
			return conflict(KindInvalidInput, "limit must be >= 1")
		}
		strategy.Limit = *patch.Limit
	}
	if patch.ActiveChannels != nil {
		strategy.ActiveChannels = append([]string(nil), (*patch.ActiveChannels)...)
	}
	if patch.DraftLanguages != nil {
		strategy.DraftLanguages = append([]string(nil), (*patch.DraftLanguages)...)
	}
	if patch.DefaultAccounts != nil {
		accounts := make(map[string]string, len(*patch.DefaultAccounts))
		for channel, accountID := range *patch.DefaultAccounts {
			accounts[channel] = accountID
		}
		strategy.DefaultAccounts = accounts
	}
	return nil
}
