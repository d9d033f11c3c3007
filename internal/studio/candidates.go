package studio

import (
	"context"
	"strings"
	"time"

	"horse.fit/brandstudio/internal/candidate"
)

// Discovery modes.
const (
	DiscoveryStub   = "stub"
	DiscoveryLive   = "live"
	DiscoveryHybrid = "hybrid"
)

// ListFilter narrows the candidate listing. A nil MinScore falls back to the
// active strategy's configured minimum.
type ListFilter struct {
	Channel  string
	Lang     string
	Limit    int
	MinScore *float64
}

// sampleRawItems is the synthetic discovery set used by stub mode and as the
// hybrid fallback when live sources return nothing.
func sampleRawItems() []candidate.RawItem {
	return []candidate.RawItem{
		{
			ID:         "cand-1",
			Source:     "github",
			URL:        "https://github.com/trending",
			Topic:      "Runtime governance for local-first AI stacks",
			Summary:    "Growing discussion around governance and safe runtime fallback paths.",
			Language:   "en",
			AgeMinutes: 40,
		},
		{
			ID:         "cand-2",
			Source:     "hn",
			URL:        "https://news.ycombinator.com/",
			Topic:      "Cost controls for hybrid local/cloud LLM routing",
			Summary:    "Thread on balancing local privacy with cloud elasticity.",
			Language:   "en",
			AgeMinutes: 120,
		},
		{
			ID:         "cand-3",
			Source:     "rss",
			URL:        "https://example.org/devops-ai",
			Topic:      "Jak budowac moduly pluginowe bez dlugu w core",
			Summary:    "Artykul o kontraktach modulowych i separacji produktu od platformy.",
			Language:   "pl",
			AgeMinutes: 300,
		},
	}
}

// refreshLocked refreshes the candidate list if forced or stale. Caller
// holds the lock.
func (s *Service) refreshLocked(ctx context.Context, force bool) {
	strategy := s.activeStrategy()
	ttl := time.Duration(strategy.CacheTTLSeconds) * time.Second
	if !force && len(s.candidates) > 0 && nowUTC().Sub(s.refreshedAt) <= ttl {
		return
	}

	mode := strings.ToLower(strings.TrimSpace(strategy.DiscoveryMode))
	switch mode {
	case DiscoveryLive, DiscoveryHybrid:
		var raws []candidate.RawItem
		if s.sources != nil {
			raws = s.sources.FetchAll(ctx, strategy.RSSFeeds)
		}
		items := candidate.Normalize(raws)
		if len(items) == 0 {
			if mode == DiscoveryLive {
				// Explicit no-data signal.
				s.candidates = nil
			} else {
				s.candidates = candidate.Normalize(sampleRawItems())
			}
		} else {
			s.candidates = items
		}
	default:
		s.candidates = candidate.Normalize(sampleRawItems())
	}

	s.refreshedAt = nowUTC()
	s.persistCandidates()
}

// ListCandidates sweeps due scheduled items, refreshes if stale, then
// filters and ranks per the active strategy.
func (s *Service) ListCandidates(ctx context.Context, filter ListFilter) ([]candidate.Candidate, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processScheduledLocked(ctx)
	s.refreshLocked(ctx, false)

	strategy := s.activeStrategy()
	minScore := strategy.MinScore
	if filter.MinScore != nil {
		minScore = *filter.MinScore
	}

	items := make([]candidate.Candidate, 0, len(s.candidates))
	for _, item := range s.candidates {
		if item.Score < minScore {
			continue
		}
		if filter.Lang != "" && item.Language != filter.Lang {
			continue
		}
		if !channelAdmitsSource(filter.Channel, item.Source) {
			continue
		}
		if !matchesKeywords(strategy.TopicKeywords, item) {
			continue
		}
		items = append(items, item)
	}
	candidate.Rank(items)

	limit := strategy.Limit
	if filter.Limit > 0 && filter.Limit < limit {
		limit = filter.Limit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, s.refreshedAt
}

// ForceRefresh discards TTL state and re-runs discovery.
func (s *Service) ForceRefresh(ctx context.Context) ([]candidate.Candidate, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx, true)
	items := make([]candidate.Candidate, len(s.candidates))
	copy(items, s.candidates)
	return items, s.refreshedAt
}

func (s *Service) findCandidate(id string) *candidate.Candidate {
	for i := range s.candidates {
		if s.candidates[i].ID == id {
			return &s.candidates[i]
		}
	}
	return nil
}

// channelAdmitsSource is the coarse channel/source compatibility predicate:
// x wants conversational sources, github wants code/paper sources, anything
// else admits everything.
func channelAdmitsSource(channel, source string) bool {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "":
		return true
	case "x":
		return source == "hn" || source == "github" || source == "rss"
	case "github":
		return source == "github" || source == "arxiv"
	default:
		return true
	}
}

func matchesKeywords(keywords []string, item candidate.Candidate) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(item.Topic + " " + item.Summary)
	for _, keyword := range keywords {
		if needle := strings.ToLower(strings.TrimSpace(keyword)); needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
