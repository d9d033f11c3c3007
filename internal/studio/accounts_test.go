package studio

import (
	"context"
	"testing"
)

func TestCreateAccount_SupportingRequiresPrimary(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	_, err := service.CreateAccount(CreateAccountRequest{
		Channel:     "x",
		DisplayName: "Echo",
		Role:        RoleSupporting,
		Enabled:     true,
		Actor:       "tester",
	})
	if ConflictKind(err) != KindMissingPrimary {
		t.Fatalf("expected missing-primary conflict, got %v", err)
	}

	primary, err := service.CreateAccount(CreateAccountRequest{
		Channel:     "x",
		DisplayName: "Main",
		Enabled:     true,
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount primary: %v", err)
	}
	supporting, err := service.CreateAccount(CreateAccountRequest{
		Channel:           "x",
		DisplayName:       "Echo",
		Role:              RoleSupporting,
		SupportsAccountID: primary.AccountID,
		Enabled:           true,
		Actor:             "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount supporting: %v", err)
	}
	if supporting.SupportsAccountID != primary.AccountID {
		t.Fatalf("unexpected back-reference: %q", supporting.SupportsAccountID)
	}
}

func TestAccounts_SingleDefaultPerChannel(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	first, err := service.CreateAccount(CreateAccountRequest{
		Channel: "devto", DisplayName: "One", Enabled: true, IsDefault: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	second, err := service.CreateAccount(CreateAccountRequest{
		Channel: "devto", DisplayName: "Two", Enabled: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if _, err := service.SetDefaultAccount("devto", second.AccountID, "tester"); err != nil {
		t.Fatalf("SetDefaultAccount: %v", err)
	}

	defaults := 0
	for _, account := range service.ChannelAccounts("devto") {
		if account.IsDefault {
			defaults++
			if account.AccountID != second.AccountID {
				t.Fatalf("wrong default account: %q", account.AccountID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}
	_ = first
}

func TestUpdateAccount_RejectedPatchLeavesAccountUnchanged(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	account, err := service.CreateAccount(CreateAccountRequest{
		Channel: "devto", DisplayName: "One", Enabled: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	role := RoleSupporting
	missing := "acct-missing"
	_, err = service.UpdateAccount("devto", account.AccountID, AccountPatch{
		Role: &role, SupportsAccountID: &missing,
	}, "tester")
	if ConflictKind(err) != KindMissingPrimary {
		t.Fatalf("expected missing-primary conflict, got %v", err)
	}

	stored := service.ChannelAccounts("devto")[0]
	if stored.Role != RolePrimary || stored.SupportsAccountID != "" {
		t.Fatalf("rejected patch must not stick: role=%q supports=%q", stored.Role, stored.SupportsAccountID)
	}

	self := account.AccountID
	_, err = service.UpdateAccount("devto", account.AccountID, AccountPatch{
		Role: &role, SupportsAccountID: &self,
	}, "tester")
	if ConflictKind(err) != KindMissingPrimary {
		t.Fatalf("expected missing-primary conflict on self reference, got %v", err)
	}
}

func TestAccounts_DisabledAccountLosesDefaultFlag(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	account, err := service.CreateAccount(CreateAccountRequest{
		Channel: "devto", DisplayName: "One", Enabled: true, IsDefault: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	disabled := false
	updated, err := service.UpdateAccount("devto", account.AccountID, AccountPatch{Enabled: &disabled}, "tester")
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.IsDefault {
		t.Fatal("a disabled account cannot stay the default")
	}
}

func TestTestAccount_RecordsOutcome(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{name: "devto", validateErr: errBoom}
	service := newTestService(Dependencies{Registry: registryWith("devto", publisher)})
	account, err := service.CreateAccount(CreateAccountRequest{
		Channel: "devto", DisplayName: "One", Enabled: true, Actor: "tester",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	result, err := service.TestAccount(context.Background(), "devto", account.AccountID, "tester")
	if err != nil {
		t.Fatalf("TestAccount: %v", err)
	}
	if result.Success {
		t.Fatal("expected test failure")
	}

	accounts := service.ChannelAccounts("devto")
	if accounts[0].LastTest == nil || accounts[0].LastTest.Success {
		t.Fatalf("last test not recorded: %+v", accounts[0].LastTest)
	}
}

func TestChannels_ReportsSecretStatus(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{name: "devto"}
	service := newTestService(Dependencies{Registry: registryWith("devto", publisher)})

	byName := make(map[string]ChannelInfo)
	for _, info := range service.Channels() {
		byName[info.Channel] = info
	}
	if !byName["devto"].Configured || byName["devto"].SecretStatus != SecretConfigured {
		t.Fatalf("devto must report configured: %+v", byName["devto"])
	}
	if byName["medium"].Configured || byName["medium"].SecretStatus != SecretMissing {
		t.Fatalf("medium must report missing secrets: %+v", byName["medium"])
	}
}

func TestDeleteAccount_Unknown(t *testing.T) {
	t.Parallel()

	service := newTestService(Dependencies{})
	if err := service.DeleteAccount("devto", "acct-missing", "tester"); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
