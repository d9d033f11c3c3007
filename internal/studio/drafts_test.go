package studio

import (
	"context"
	"strings"
	"testing"
	"time"

	"horse.fit/brandstudio/internal/globaltime"
)

func generateSampleDraft(t *testing.T, service *Service, channels, languages []string) DraftBundle {
	t.Helper()
	service.ForceRefresh(context.Background())
	bundle, err := service.GenerateDraft(context.Background(), DraftRequest{
		CandidateID: "cand-1",
		Channels:    channels,
		Languages:   languages,
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	return bundle
}

func TestGenerateDraft_UnknownCandidate(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	service.ForceRefresh(context.Background())
	_, err := service.GenerateDraft(context.Background(), DraftRequest{
		CandidateID: "cand-missing",
		Channels:    []string{"x"},
		Languages:   []string{"en"},
		Actor:       "tester",
	})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGenerateDraft_FallbackVariantsPerChannelAndLanguage(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	bundle := generateSampleDraft(t, service, []string{"x", "github"}, []string{"pl", "en"})

	if len(bundle.Variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(bundle.Variants))
	}
	seen := make(map[string]int)
	for _, variant := range bundle.Variants {
		if variant.AccountID != "" {
			t.Fatalf("no supporting accounts configured, got teaser for %q", variant.AccountID)
		}
		if !variant.Fallback {
			t.Fatal("without an LLM backend every variant is fallback content")
		}
		if variant.Content == "" {
			t.Fatal("empty variant content")
		}
		seen[variant.Channel+"/"+variant.Language]++
	}
	for pair, count := range seen {
		if count != 1 {
			t.Fatalf("expected one primary variant per pair, got %d for %s", count, pair)
		}
	}
}

func TestGenerateDraft_DuplicateRequestListsCollapse(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	bundle := generateSampleDraft(t, service, []string{"x", "x", "X "}, []string{"en", "en"})

	if len(bundle.Variants) != 1 {
		t.Fatalf("expected one variant for the collapsed pair, got %d", len(bundle.Variants))
	}
	if bundle.Variants[0].Channel != "x" || bundle.Variants[0].Language != "en" {
		t.Fatalf("unexpected variant pair: %s/%s", bundle.Variants[0].Channel, bundle.Variants[0].Language)
	}

	// The clean form of the same request hits the cache.
	clean := generateSampleDraft(t, service, []string{"x"}, []string{"en"})
	if clean.DraftID != bundle.DraftID {
		t.Fatalf("expected cached draft id %s, got %s", bundle.DraftID, clean.DraftID)
	}
}

func TestGenerateDraft_CacheReturnsSameDraft(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	first := generateSampleDraft(t, service, []string{"x"}, []string{"en"})
	second := generateSampleDraft(t, service, []string{"x"}, []string{"en"})
	if first.DraftID != second.DraftID {
		t.Fatalf("expected cached draft id %s, got %s", first.DraftID, second.DraftID)
	}

	// A different tuple misses the cache.
	third, err := service.GenerateDraft(context.Background(), DraftRequest{
		CandidateID: "cand-1",
		Channels:    []string{"x"},
		Languages:   []string{"en"},
		Tone:        "expert",
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if third.DraftID == first.DraftID {
		t.Fatal("tone change must produce a new bundle")
	}
}

func TestGenerateDraft_CacheExpires(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	service := newTestService(Dependencies{})
	first := generateSampleDraft(t, service, []string{"x"}, []string{"en"})

	globaltime.SetMockTime(time.Date(2026, 8, 31, 9, 0, 1, 0, time.UTC))
	second, err := service.GenerateDraft(context.Background(), DraftRequest{
		CandidateID: "cand-1",
		Channels:    []string{"x"},
		Languages:   []string{"en"},
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if second.DraftID == first.DraftID {
		t.Fatal("expired cache entry must not be reused")
	}
}

func TestGenerateDraft_LLMOutputUsed(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{text: "Model-written perspective on governance."}
	service := newTestService(Dependencies{Generator: generator})
	bundle := generateSampleDraft(t, service, []string{"x"}, []string{"en"})

	if bundle.Variants[0].Content != "Model-written perspective on governance." {
		t.Fatalf("unexpected content: %q", bundle.Variants[0].Content)
	}
	if bundle.Variants[0].Fallback {
		t.Fatal("successful generation must not be marked fallback")
	}
	if generator.calls != 1 {
		t.Fatalf("expected one generation call, got %d", generator.calls)
	}
}

func TestGenerateDraft_LLMFailureFallsBackAndAudits(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{Generator: &fakeGenerator{err: errBoom}})
	bundle := generateSampleDraft(t, service, []string{"x"}, []string{"en"})

	variant := bundle.Variants[0]
	if !variant.Fallback {
		t.Fatal("failed generation must fall back")
	}
	if !strings.Contains(variant.Content, "My engineering perspective") {
		t.Fatalf("unexpected fallback content: %q", variant.Content)
	}

	found := false
	for _, entry := range service.AuditItems() {
		if entry.Action == "llm.fallback" {
			found = true
		}
	}
	if !found {
		t.Fatal("llm failure must leave an llm.fallback audit entry")
	}
}

func TestGenerateDraft_SupportingTeaserCarriesAttribution(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	primary, err := service.CreateAccount(CreateAccountRequest{
		Channel:     "x",
		DisplayName: "Main Voice",
		Enabled:     true,
		IsDefault:   true,
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount primary: %v", err)
	}
	supporting, err := service.CreateAccount(CreateAccountRequest{
		Channel:           "x",
		DisplayName:       "Echo Account",
		Role:              RoleSupporting,
		SupportsAccountID: primary.AccountID,
		Enabled:           true,
		Actor:             "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount supporting: %v", err)
	}

	bundle := generateSampleDraft(t, service, []string{"x"}, []string{"en", "pl"})

	teasers := 0
	for _, variant := range bundle.Variants {
		if variant.AccountID == "" {
			continue
		}
		teasers++
		if variant.AccountID != supporting.AccountID {
			t.Fatalf("teaser bound to unexpected account %q", variant.AccountID)
		}
		phrase := attributionPhraseEN
		if variant.Language == "pl" {
			phrase = attributionPhrasePL
		}
		if !strings.Contains(variant.Content, phrase) {
			t.Fatalf("teaser missing attribution phrase: %q", variant.Content)
		}
		if !strings.Contains(variant.Content, "https://github.com/trending") {
			t.Fatalf("teaser missing candidate url: %q", variant.Content)
		}
		if !strings.Contains(variant.Content, "Main Voice") {
			t.Fatalf("teaser must reference the primary account: %q", variant.Content)
		}
	}
	if teasers != 2 {
		t.Fatalf("expected one teaser per language, got %d", teasers)
	}
}

func TestEnsureAttribution(t *testing.T) {
	t.Parallel()

	got := ensureAttribution("bare teaser", "en", "https://example.org/a")
	if !strings.Contains(got, attributionPhraseEN) || !strings.Contains(got, "https://example.org/a") {
		t.Fatalf("attribution not appended: %q", got)
	}

	already := "read this. " + attributionPhraseEN + ": https://example.org/a"
	if ensureAttribution(already, "en", "https://example.org/a") != already {
		t.Fatal("complete teaser must pass through unchanged")
	}
}
