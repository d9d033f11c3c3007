package candidate

import (
	"reflect"
	"testing"
)

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()

	first := Score("Runtime governance for local-first AI stacks", "Growing discussion around governance and safe runtime fallback paths.", 40)
	second := Score("Runtime governance for local-first AI stacks", "Growing discussion around governance and safe runtime fallback paths.", 40)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical breakdowns, got %+v vs %+v", first, second)
	}
}

func TestScore_SampleCandidateAboveDefaultMinScore(t *testing.T) {
	t.Parallel()

	breakdown := Score("Runtime governance for local-first AI stacks", "Growing discussion around governance and safe runtime fallback paths.", 40)
	if breakdown.FinalScore < 0.3 {
		t.Fatalf("expected final score >= 0.3, got %f", breakdown.FinalScore)
	}
	if breakdown.FinalScore != clip01(0.40*breakdown.Relevance+0.25*breakdown.Timeliness+0.25*breakdown.AuthorityFit-0.20*breakdown.RiskPenalty) {
		t.Fatalf("final score does not match weighted components: %+v", breakdown)
	}
}

func TestScore_TimelinessDecaysToZeroAfterOneDay(t *testing.T) {
	t.Parallel()

	if got := Score("topic", "summary", 1440).Timeliness; got != 0 {
		t.Fatalf("expected zero timeliness at 24h, got %f", got)
	}
	if got := Score("topic", "summary", 10000).Timeliness; got != 0 {
		t.Fatalf("expected zero timeliness beyond 24h, got %f", got)
	}
	if got := Score("topic", "summary", 0).Timeliness; got != 1 {
		t.Fatalf("expected full timeliness for fresh item, got %f", got)
	}
}

func TestScore_RiskPenaltyAndReason(t *testing.T) {
	t.Parallel()

	breakdown := Score("Crypto moon giveaway", "Viral trick spam inside", 10)
	if breakdown.RiskPenalty != 1 {
		t.Fatalf("expected full risk penalty, got %f", breakdown.RiskPenalty)
	}
	if !containsReason(breakdown.Reasons, "risk penalty applied") {
		t.Fatalf("expected risk reason, got %v", breakdown.Reasons)
	}
}

func TestScore_BalancedOpportunityCatchAll(t *testing.T) {
	t.Parallel()

	breakdown := Score("quiet subject", "nothing notable here", 1440)
	if len(breakdown.Reasons) != 1 || breakdown.Reasons[0] != "balanced opportunity" {
		t.Fatalf("expected balanced opportunity catch-all, got %v", breakdown.Reasons)
	}
}

func containsReason(reasons []string, want string) bool {
	for _, reason := range reasons {
		if reason == want {
			return true
		}
	}
	return false
}
