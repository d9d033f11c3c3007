package studio

import (
	"context"
	"sort"
	"strings"
)

// Secret statuses reported per channel.
const (
	SecretConfigured = "configured"
	SecretMissing    = "missing"
)

// ChannelInfo summarizes one publishing channel for operators.
type ChannelInfo struct {
	Channel      string `json:"channel"`
	Configured   bool   `json:"configured"`
	SecretStatus string `json:"secret_status"`
	Accounts     int    `json:"accounts"`
}

// CreateAccountRequest adds an account binding on one channel.
type CreateAccountRequest struct {
	Channel           string
	DisplayName       string
	Target            string
	Role              string
	SupportsAccountID string
	Enabled           bool
	IsDefault         bool
	Capabilities      []string
	Actor             string
}

// AccountPatch is a partial account update: only non-nil fields apply.
type AccountPatch struct {
	DisplayName       *string   `json:"display_name,omitempty"`
	Target            *string   `json:"target,omitempty"`
	Enabled           *bool     `json:"enabled,omitempty"`
	IsDefault         *bool     `json:"is_default,omitempty"`
	Role              *string   `json:"role,omitempty"`
	SupportsAccountID *string   `json:"supports_account_id,omitempty"`
	Capabilities      *[]string `json:"capabilities,omitempty"`
}

// Channels lists every channel the dispatcher understands with its
// configuration state.
func (s *Service) Channels() []ChannelInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.registry.Channels()
	infos := make([]ChannelInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ChannelInfo{
			Channel:      name,
			Configured:   s.registry.Configured(name),
			SecretStatus: s.secretStatusForChannel(name),
			Accounts:     len(s.accounts[name]),
		})
	}
	return infos
}

func (s *Service) secretStatusForChannel(channel string) string {
	if s.registry.Configured(channel) {
		return SecretConfigured
	}
	return SecretMissing
}

// ChannelAccounts returns the accounts for one channel with the computed
// secret status filled in.
func (s *Service) ChannelAccounts(channel string) []ChannelAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.secretStatusForChannel(channel)
	accounts := make([]ChannelAccount, len(s.accounts[channel]))
	for i, account := range s.accounts[channel] {
		account.SecretStatus = status
		accounts[i] = account
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts
}

func (s *Service) CreateAccount(req CreateAccountRequest) (ChannelAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel == "" {
		return ChannelAccount{}, conflict(KindInvalidInput, "channel is required")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return ChannelAccount{}, conflict(KindInvalidInput, "display_name is required")
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = RolePrimary
	}
	if role != RolePrimary && role != RoleSupporting {
		return ChannelAccount{}, conflict(KindInvalidInput, "role must be primary or supporting")
	}
	if role == RoleSupporting {
		if err := s.checkSupportingReference(channel, req.SupportsAccountID); err != nil {
			return ChannelAccount{}, err
		}
	}

	now := nowUTC()
	account := ChannelAccount{
		AccountID:         newID("acct"),
		Channel:           channel,
		DisplayName:       displayName,
		Target:            strings.TrimSpace(req.Target),
		Enabled:           req.Enabled,
		IsDefault:         req.IsDefault,
		Role:              role,
		SupportsAccountID: strings.TrimSpace(req.SupportsAccountID),
		Capabilities:      append([]string(nil), req.Capabilities...),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.accounts[channel] = append(s.accounts[channel], account)
	s.normalizeDefaults(channel, account.AccountID)

	s.appendAudit(req.Actor, "account.create", "ok", account.AccountID, channel+" account "+displayName)
	s.persistAccounts()
	s.persistState()
	return *s.findAccount(channel, account.AccountID), nil
}

// UpdateAccount applies a partial update. The merged result is validated
// before anything is stored, so a rejected patch leaves the account exactly
// as it was. Clearing is_default on the current default promotes the first
// enabled account on the channel; there is always exactly one enabled
// default while any enabled account exists.
func (s *Service) UpdateAccount(channel, accountID string, patch AccountPatch, actor string) (ChannelAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel = strings.ToLower(strings.TrimSpace(channel))
	account := s.findAccount(channel, accountID)
	if account == nil {
		return ChannelAccount{}, notFound(KindAccount, accountID)
	}

	updated := *account
	updated.Capabilities = append([]string(nil), account.Capabilities...)
	if patch.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*patch.Role))
		if role != RolePrimary && role != RoleSupporting {
			return ChannelAccount{}, conflict(KindInvalidInput, "role must be primary or supporting")
		}
		updated.Role = role
	}
	if patch.SupportsAccountID != nil {
		updated.SupportsAccountID = strings.TrimSpace(*patch.SupportsAccountID)
	}
	if updated.Role == RoleSupporting {
		if updated.SupportsAccountID == accountID {
			return ChannelAccount{}, conflict(KindMissingPrimary, "an account cannot support itself")
		}
		if err := s.checkSupportingReference(channel, updated.SupportsAccountID); err != nil {
			return ChannelAccount{}, err
		}
	}
	if patch.DisplayName != nil {
		if name := strings.TrimSpace(*patch.DisplayName); name != "" {
			updated.DisplayName = name
		}
	}
	if patch.Target != nil {
		updated.Target = strings.TrimSpace(*patch.Target)
	}
	if patch.Enabled != nil {
		updated.Enabled = *patch.Enabled
	}
	if patch.IsDefault != nil {
		updated.IsDefault = *patch.IsDefault
	}
	if patch.Capabilities != nil {
		updated.Capabilities = append([]string(nil), (*patch.Capabilities)...)
	}
	updated.UpdatedAt = nowUTC()
	*account = updated
	s.normalizeDefaults(channel, account.AccountID)

	s.appendAudit(actor, "account.update", "ok", accountID, channel+" account updated")
	s.persistAccounts()
	s.persistState()
	return *s.findAccount(channel, accountID), nil
}

func (s *Service) DeleteAccount(channel, accountID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel = strings.ToLower(strings.TrimSpace(channel))
	if s.findAccount(channel, accountID) == nil {
		return notFound(KindAccount, accountID)
	}

	remaining := make([]ChannelAccount, 0, len(s.accounts[channel])-1)
	for _, account := range s.accounts[channel] {
		if account.AccountID != accountID {
			remaining = append(remaining, account)
		}
	}
	s.accounts[channel] = remaining
	s.normalizeDefaults(channel, "")

	s.appendAudit(actor, "account.delete", "ok", accountID, channel+" account removed")
	s.persistAccounts()
	s.persistState()
	return nil
}

// SetDefaultAccount enables an account and makes it the channel default.
func (s *Service) SetDefaultAccount(channel, accountID, actor string) (ChannelAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel = strings.ToLower(strings.TrimSpace(channel))
	account := s.findAccount(channel, accountID)
	if account == nil {
		return ChannelAccount{}, notFound(KindAccount, accountID)
	}
	account.Enabled = true
	account.IsDefault = true
	account.UpdatedAt = nowUTC()
	s.normalizeDefaults(channel, accountID)

	s.appendAudit(actor, "account.activate", "ok", accountID, channel+" default account")
	s.persistAccounts()
	s.persistState()
	return *account, nil
}

// TestAccount runs the channel publisher's connection check and stores the
// outcome on the account.
func (s *Service) TestAccount(ctx context.Context, channel, accountID, actor string) (AccountTestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel = strings.ToLower(strings.TrimSpace(channel))
	account := s.findAccount(channel, accountID)
	if account == nil {
		return AccountTestResult{}, notFound(KindAccount, accountID)
	}

	result := AccountTestResult{Success: true, Message: "connection ok", TestedAt: nowUTC()}
	if err := s.registry.Resolve(channel).ValidateConnection(ctx); err != nil {
		result.Success = false
		result.Message = err.Error()
	}
	account.LastTest = &result
	account.UpdatedAt = result.TestedAt

	status := "ok"
	if !result.Success {
		status = "failed"
	}
	s.appendAudit(actor, "account.test", status, accountID, result.Message)
	s.persistAccounts()
	s.persistState()
	return result, nil
}

func (s *Service) findAccount(channel, accountID string) *ChannelAccount {
	list := s.accounts[channel]
	for i := range list {
		if list[i].AccountID == accountID {
			return &list[i]
		}
	}
	return nil
}

// checkSupportingReference requires a supporting account to point at an
// existing primary account in the same channel.
func (s *Service) checkSupportingReference(channel, supportsAccountID string) error {
	ref := strings.TrimSpace(supportsAccountID)
	if ref == "" {
		return conflict(KindMissingPrimary, "a supporting account must reference a primary account")
	}
	primary := s.findAccount(channel, ref)
	if primary == nil || primary.Role != RolePrimary {
		return conflict(KindMissingPrimary, "supports_account_id must reference an existing primary account on "+channel)
	}
	return nil
}

// normalizeDefaults enforces one enabled default per channel. preferred
// wins when several accounts claim the default flag; if no enabled account
// claims it, the first enabled one is promoted.
func (s *Service) normalizeDefaults(channel, preferred string) {
	list := s.accounts[channel]

	chosen := ""
	for i := range list {
		if !list[i].Enabled || !list[i].IsDefault {
			continue
		}
		if chosen == "" || list[i].AccountID == preferred {
			chosen = list[i].AccountID
		}
	}
	if chosen == "" {
		for i := range list {
			if list[i].Enabled {
				chosen = list[i].AccountID
				break
			}
		}
	}

	for i := range list {
		list[i].IsDefault = list[i].Enabled && list[i].AccountID == chosen
	}
}
