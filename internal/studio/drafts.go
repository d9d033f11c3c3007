package studio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"horse.fit/brandstudio/internal/candidate"
)

const (
	attributionPhraseEN = "Original knowledge source"
	attributionPhrasePL = "Oryginalne źródło wiedzy"

	teaserExcerptLimit = 1000
)

// DraftRequest asks for one generation event.
type DraftRequest struct {
	CandidateID string
	Channels    []string
	Languages   []string
	Tone        string
	CampaignID  string
	Actor       string
}

type generationJob struct {
	index    int
	prompt   string
	fallback string
}

// GenerateDraft produces per-(channel, language) variants for a candidate,
// through the LLM when enabled with deterministic fallback text otherwise,
// plus attributed teaser variants for channels with supporting accounts.
// Identical requests within the draft-cache TTL return the cached bundle.
func (s *Service) GenerateDraft(ctx context.Context, req DraftRequest) (DraftBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.Channels = dedupeList(req.Channels)
	req.Languages = dedupeList(req.Languages)
	if len(req.Channels) == 0 || len(req.Languages) == 0 {
		return DraftBundle{}, conflict(KindInvalidInput, "at least one channel and one language are required")
	}

	found := s.findCandidate(req.CandidateID)
	if found == nil {
		return DraftBundle{}, notFound(KindCandidate, req.CandidateID)
	}
	subject := *found

	cacheKey := draftCacheKey(req)
	ttl := time.Duration(s.cfg.DraftCacheTTLSeconds) * time.Second
	if entry, ok := s.state.DraftCache[cacheKey]; ok && nowUTC().Sub(entry.CachedAt) <= ttl {
		if bundle, live := s.state.Drafts[entry.DraftID]; live {
			s.appendAudit(req.Actor, "draft.generate", "cached", bundle.DraftID, "reused cached bundle for "+req.CandidateID)
			s.persistState()
			return bundle, nil
		}
	}

	draftID := newID("draft")

	jobs := make([]generationJob, 0, len(req.Channels)*len(req.Languages))
	variants := make([]DraftVariant, 0, len(jobs))
	for _, channel := range req.Channels {
		for _, lang := range req.Languages {
			jobs = append(jobs, generationJob{
				index:    len(variants),
				prompt:   primaryPrompt(subject, lang, req.Tone),
				fallback: primaryFallback(subject, lang, req.Tone),
			})
			variants = append(variants, DraftVariant{Channel: channel, Language: lang})
		}
	}

	outcomes := s.runGenerationJobs(ctx, jobs)
	for i, job := range jobs {
		variants[job.index].Content = outcomes[i].content
		variants[job.index].Fallback = outcomes[i].fellBack
		if outcomes[i].fellBack && outcomes[i].reason != "" {
			s.appendAudit(req.Actor, "llm.fallback", "fallback", draftID,
				fmt.Sprintf("%s/%s: %s", variants[job.index].Channel, variants[job.index].Language, outcomes[i].reason))
		}
	}

	variants = append(variants, s.supportingVariants(ctx, req, draftID, subject, variants)...)

	bundle := DraftBundle{
		DraftID:     draftID,
		CandidateID: subject.ID,
		Variants:    variants,
		CampaignID:  req.CampaignID,
		CreatedAt:   nowUTC(),
	}
	s.state.Drafts[draftID] = bundle
	s.state.DraftCache[cacheKey] = draftCacheEntry{DraftID: draftID, CachedAt: bundle.CreatedAt}
	s.appendAudit(req.Actor, "draft.generate", "ok", draftID,
		fmt.Sprintf("%d variants for %s", len(variants), subject.ID))
	s.persistState()
	return bundle, nil
}

type generationOutcome struct {
	content  string
	fellBack bool
	reason   string
}

// runGenerationJobs resolves every job to content, through the LLM worker
// pool when a backend is enabled. A failed generation falls back to the
// job's deterministic text and never fails the draft.
func (s *Service) runGenerationJobs(ctx context.Context, jobs []generationJob) []generationOutcome {
	outcomes := make([]generationOutcome, len(jobs))
	if s.generator == nil || !s.generator.Enabled() {
		for i, job := range jobs {
			outcomes[i] = generationOutcome{content: job.fallback, fellBack: true}
		}
		return outcomes
	}

	workers := s.cfg.LLMWorkers
	if workers < 1 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(slot int, job generationJob) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			text, err := s.generator.GenerateText(ctx, job.prompt)
			if err != nil || strings.TrimSpace(text) == "" {
				reason := "empty response"
				if err != nil {
					reason = err.Error()
				}
				outcomes[slot] = generationOutcome{content: job.fallback, fellBack: true, reason: reason}
				return
			}
			outcomes[slot] = generationOutcome{content: strings.TrimSpace(text)}
		}(i, job)
	}
	wg.Wait()
	return outcomes
}

// supportingVariants builds attributed teasers for every enabled supporting
// account on each requested channel. Each teaser is guaranteed to carry the
// attribution phrase and the candidate URL.
func (s *Service) supportingVariants(ctx context.Context, req DraftRequest, draftID string, subject candidate.Candidate, primaries []DraftVariant) []DraftVariant {
	var teasers []DraftVariant
	for _, channel := range req.Channels {
		supporting := s.enabledSupportingAccounts(channel)
		if len(supporting) == 0 {
			continue
		}
		primaryRef := s.primaryAccountName(channel)
		if primaryRef == "" {
			primaryRef = subject.URL
		}

		for _, account := range supporting {
			for _, lang := range req.Languages {
				excerpt := truncateExcerpt(primaryContentFor(primaries, channel, lang), teaserExcerptLimit)
				job := generationJob{
					prompt:   teaserPrompt(subject, lang, primaryRef, excerpt),
					fallback: teaserFallback(subject, lang, primaryRef, excerpt),
				}
				outcome := s.runGenerationJobs(ctx, []generationJob{job})[0]
				if outcome.fellBack && outcome.reason != "" {
					s.appendAudit(req.Actor, "llm.fallback", "fallback", draftID,
						fmt.Sprintf("%s/%s teaser: %s", channel, lang, outcome.reason))
				}
				teasers = append(teasers, DraftVariant{
					Channel:   channel,
					Language:  lang,
					Content:   ensureAttribution(outcome.content, lang, subject.URL),
					AccountID: account.AccountID,
					Fallback:  outcome.fellBack,
				})
			}
		}
	}
	return teasers
}

func primaryContentFor(variants []DraftVariant, channel, lang string) string {
	for _, variant := range variants {
		if variant.AccountID == "" && variant.Channel == channel && variant.Language == lang {
			return variant.Content
		}
	}
	return ""
}

func (s *Service) enabledSupportingAccounts(channel string) []ChannelAccount {
	var accounts []ChannelAccount
	for _, account := range s.accounts[channel] {
		if account.Enabled && account.Role == RoleSupporting {
			accounts = append(accounts, account)
		}
	}
	return accounts
}

// primaryAccountName prefers the channel's default primary account, then any
// enabled primary.
func (s *Service) primaryAccountName(channel string) string {
	var fallback string
	for _, account := range s.accounts[channel] {
		if !account.Enabled || account.Role != RolePrimary {
			continue
		}
		if account.IsDefault {
			return account.DisplayName
		}
		if fallback == "" {
			fallback = account.DisplayName
		}
	}
	return fallback
}

// dedupeList lowercases, trims and de-duplicates while preserving the first
// occurrence order. Repeating a channel or language in a request must not
// multiply variants.
func dedupeList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// draftCacheKey is a canonical JSON serialization of the request tuple.
func draftCacheKey(req DraftRequest) string {
	payload, _ := json.Marshal(struct {
		CandidateID string   `json:"candidate_id"`
		Channels    []string `json:"channels"`
		Languages   []string `json:"languages"`
		Tone        string   `json:"tone"`
		CampaignID  string   `json:"campaign_id"`
	}{req.CandidateID, req.Channels, req.Languages, req.Tone, req.CampaignID})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func primaryPrompt(subject candidate.Candidate, lang, tone string) string {
	toneLine := ""
	if tone != "" {
		toneLine = " Tone: " + tone + "."
	}
	if lang == "pl" {
		return fmt.Sprintf(
			"Jesteś ekspertem inżynierii AI. Napisz pełny ekspercki post po polsku o: %s. Kontekst: %s. Źródło: %s. "+
				"Pisz płynnymi akapitami z praktycznymi wnioskami, bez nagłówków markdown i bez list numerowanych.%s",
			subject.Topic, subject.Summary, subject.URL, toneLine)
	}
	return fmt.Sprintf(
		"You are an AI engineering expert. Write a full expert post in English about: %s. Context: %s. Source: %s. "+
			"Write flowing paragraphs with practical takeaways, no markdown headers, no numbered lists.%s",
		subject.Topic, subject.Summary, subject.URL, toneLine)
}

func primaryFallback(subject candidate.Candidate, lang, tone string) string {
	toneSuffix := ""
	if tone != "" {
		toneSuffix = " (" + tone + ")"
	}
	if lang == "pl" {
		return strings.TrimSpace(fmt.Sprintf("%s: %s Moja perspektywa inżynierska i praktyczne wnioski.%s",
			subject.Topic, subject.Summary, toneSuffix))
	}
	return strings.TrimSpace(fmt.Sprintf("%s: %s My engineering perspective with practical takeaways.%s",
		subject.Topic, subject.Summary, toneSuffix))
}

func teaserPrompt(subject candidate.Candidate, lang, primaryRef, excerpt string) string {
	if lang == "pl" {
		return fmt.Sprintf(
			"Napisz krótką zajawkę po polsku polecającą materiał od %s o: %s. Fragment: %s. "+
				"Zakończ frazą \"%s\" i adresem %s.",
			primaryRef, subject.Topic, excerpt, attributionPhrasePL, subject.URL)
	}
	return fmt.Sprintf(
		"Write a short teaser in English recommending content from %s about: %s. Excerpt: %s. "+
			"End with the phrase \"%s\" and the address %s.",
		primaryRef, subject.Topic, excerpt, attributionPhraseEN, subject.URL)
}

func teaserFallback(subject candidate.Candidate, lang, primaryRef, excerpt string) string {
	if lang == "pl" {
		return fmt.Sprintf("Warto przeczytać od %s: %s %s: %s", primaryRef, excerpt, attributionPhrasePL, subject.URL)
	}
	return fmt.Sprintf("Worth reading from %s: %s %s: %s", primaryRef, excerpt, attributionPhraseEN, subject.URL)
}

// ensureAttribution appends the attribution phrase and candidate URL when
// the generated text lacks either.
func ensureAttribution(content, lang, url string) string {
	phrase := attributionPhraseEN
	if lang == "pl" {
		phrase = attributionPhrasePL
	}
	if !strings.Contains(content, phrase) {
		content = strings.TrimSpace(content) + "\n\n" + phrase + ": " + url
	} else if !strings.Contains(content, url) {
		content = strings.TrimSpace(content) + "\n\n" + url
	}
	return content
}

func truncateExcerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
