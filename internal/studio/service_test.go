package studio

import (
	"context"
	"testing"
)

func TestService_StateRoundTripAcrossRestart(t *testing.T) {
	t.Parallel()

	stateStore, candidatesStore, accountsStore := sharedStores()
	deps := Dependencies{
		StateStore:      stateStore,
		CandidatesStore: candidatesStore,
		AccountsStore:   accountsStore,
	}

	first := newTestService(deps)
	account, err := first.CreateAccount(CreateAccountRequest{
		Channel: "x", DisplayName: "Main", Enabled: true, IsDefault: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	bundle := generateSampleDraft(t, first, []string{"x"}, []string{"en"})
	item, err := first.QueueDraft(QueueRequest{DraftID: bundle.DraftID, TargetChannel: "x", Actor: "tester"})
	if err != nil {
		t.Fatalf("QueueDraft: %v", err)
	}
	if _, err := first.Publish(context.Background(), item.ItemID, true, "tester"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := first.CreateStrategy(CreateStrategyRequest{Name: "Second", Actor: "tester"}); err != nil {
		t.Fatalf("CreateStrategy: %v", err)
	}

	second := newTestService(deps)

	items := second.QueueItems(context.Background())
	if len(items) != 1 || items[0].Status != StatusPublished {
		t.Fatalf("published status must survive restart: %+v", items)
	}
	if items[0].AccountID != account.AccountID {
		t.Fatalf("account binding lost: %+v", items[0])
	}

	if strategies, activeID := second.Strategies(); len(strategies) != 2 || activeID != "default" {
		t.Fatalf("strategies not restored: %d active=%q", len(strategies), activeID)
	}

	entries := second.AuditItems()
	if len(entries) == 0 {
		t.Fatal("audit log must survive restart")
	}

	accounts := second.ChannelAccounts("x")
	if len(accounts) != 1 || accounts[0].SuccessfulPublishes != 1 {
		t.Fatalf("account counters not restored: %+v", accounts)
	}

	// Restored candidate cache seeds state without a refetch.
	zero := 0.0
	candidates, refreshedAt := second.ListCandidates(context.Background(), ListFilter{Limit: 50, MinScore: &zero})
	if len(candidates) == 0 || refreshedAt.IsZero() {
		t.Fatal("candidate cache must seed the fresh instance")
	}

	// Draft cache survives too: the same tuple returns the same bundle.
	again, err := second.GenerateDraft(context.Background(), DraftRequest{
		CandidateID: "cand-1", Channels: []string{"x"}, Languages: []string{"en"}, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if again.DraftID != bundle.DraftID {
		t.Fatalf("draft cache not restored: %s vs %s", again.DraftID, bundle.DraftID)
	}
}

func TestService_HealthPayload(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	payload := service.HealthPayload()
	if payload["status"] != "ok" || payload["module"] != "brand_studio" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
