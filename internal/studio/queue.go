package studio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"horse.fit/brandstudio/internal/connector"
)

// QueueRequest turns one draft variant into a publish intent.
type QueueRequest struct {
	DraftID         string
	TargetChannel   string
	TargetLanguage  string
	AccountID       string
	Target          string
	TargetRepo      string // deprecated alias of Target
	TargetPath      string
	PayloadOverride string
	CampaignID      string
	ScheduledAt     *time.Time
	PublishMode     string
	Actor           string
}

// QueueDraft resolves a draft variant, account and target into a queued
// item.
func (s *Service) QueueDraft(req QueueRequest) (PublishQueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, ok := s.state.Drafts[req.DraftID]
	if !ok {
		return PublishQueueItem{}, notFound(KindDraft, req.DraftID)
	}
	channel := strings.ToLower(strings.TrimSpace(req.TargetChannel))
	if channel == "" {
		return PublishQueueItem{}, conflict(KindInvalidInput, "target_channel is required")
	}

	mode := strings.ToLower(strings.TrimSpace(req.PublishMode))
	if mode == "" {
		mode = PublishModeManual
	}
	if mode != PublishModeManual && mode != PublishModeAuto {
		return PublishQueueItem{}, conflict(KindInvalidInput, "publish_mode must be manual or auto")
	}

	variant, err := selectVariant(bundle, channel, req.TargetLanguage, req.AccountID)
	if err != nil {
		return PublishQueueItem{}, err
	}

	account, err := s.resolveAccount(channel, req.AccountID)
	if err != nil {
		return PublishQueueItem{}, err
	}

	target := firstNonEmpty(req.Target, req.TargetRepo)
	if target == "" && account != nil {
		target = account.Target
	}
	if target == "" {
		target = s.cfg.DefaultTargetRepo
	}

	payload := req.PayloadOverride
	if strings.TrimSpace(payload) == "" {
		payload = variant.Content
	}

	now := nowUTC()
	item := PublishQueueItem{
		ItemID:         newID("queue"),
		DraftID:        bundle.DraftID,
		TargetChannel:  channel,
		TargetLanguage: variant.Language,
		Target:         target,
		TargetRepo:     target,
		TargetPath:     req.TargetPath,
		Title:          s.titleFor(bundle, payload),
		Payload:        payload,
		Status:         StatusQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
		CampaignID:     firstNonEmpty(req.CampaignID, bundle.CampaignID),
		ScheduledAt:    req.ScheduledAt,
		PublishMode:    mode,
	}
	if account != nil {
		item.AccountID = account.AccountID
		item.AccountName = account.DisplayName
	}

	s.state.Queue = append(s.state.Queue, item)
	s.appendAudit(req.Actor, "queue.create", StatusQueued, item.ItemID, channel+" queue item for "+bundle.DraftID)
	s.persistState()
	return item, nil
}

// selectVariant picks the bundle variant for the requested channel: an
// account-specific variant when asked for, else the primary, else the first
// available for that channel.
func selectVariant(bundle DraftBundle, channel, language, accountID string) (DraftVariant, error) {
	matches := make([]DraftVariant, 0, len(bundle.Variants))
	for _, variant := range bundle.Variants {
		if variant.Channel != channel {
			continue
		}
		if language != "" && variant.Language != language {
			continue
		}
		matches = append(matches, variant)
	}
	if len(matches) == 0 {
		return DraftVariant{}, notFound(KindVariant, channel)
	}

	if accountID != "" {
		for _, variant := range matches {
			if variant.AccountID == accountID {
				return variant, nil
			}
		}
	}
	for _, variant := range matches {
		if variant.AccountID == "" {
			return variant, nil
		}
	}
	return matches[0], nil
}

// resolveAccount applies the precedence: explicit account id (must exist),
// active strategy default, channel default, none.
func (s *Service) resolveAccount(channel, accountID string) (*ChannelAccount, error) {
	if accountID != "" {
		account := s.findAccount(channel, accountID)
		if account == nil {
			return nil, notFound(KindAccount, accountID)
		}
		return account, nil
	}

	if defaultID := s.activeStrategy().DefaultAccounts[channel]; defaultID != "" {
		if account := s.findAccount(channel, defaultID); account != nil {
			return account, nil
		}
	}
	for i := range s.accounts[channel] {
		if s.accounts[channel][i].Enabled && s.accounts[channel][i].IsDefault {
			return &s.accounts[channel][i], nil
		}
	}
	return nil, nil
}

func (s *Service) titleFor(bundle DraftBundle, payload string) string {
	if found := s.findCandidate(bundle.CandidateID); found != nil {
		return found.Topic
	}
	title := strings.TrimSpace(strings.SplitN(payload, "\n", 2)[0])
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	if title == "" {
		title = bundle.DraftID
	}
	return title
}

// Publish confirms and dispatches one queued item. Connector failures are
// returned as a failed PublishResult, not as an error.
func (s *Service) Publish(ctx context.Context, itemID string, confirmPublish bool, actor string) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(ctx, itemID, confirmPublish, actor)
}

func (s *Service) publishLocked(ctx context.Context, itemID string, confirmPublish bool, actor string) (PublishResult, error) {
	item := s.findQueueItem(itemID)
	if item == nil {
		return PublishResult{}, notFound(KindQueueItem, itemID)
	}
	if !confirmPublish {
		return PublishResult{}, conflict(KindConfirmationRequired, "confirm_publish must be true")
	}
	if item.Status == StatusPublished {
		return PublishResult{}, conflict(KindAlreadyPublished, "queue item already published: "+itemID)
	}

	publisher := s.registry.Resolve(item.TargetChannel)
	outcome, publishErr := publisher.PublishMarkdown(ctx, connector.PublishRequest{
		ItemID:  item.ItemID,
		Title:   item.Title,
		Content: item.Payload,
		Target:  item.Target,
		Path:    item.TargetPath,
	})

	now := nowUTC()
	item.UpdatedAt = now

	var result PublishResult
	if publishErr != nil {
		item.Status = StatusFailed
		result = PublishResult{
			Success: false,
			Status:  StatusFailed,
			Message: fmt.Sprintf("%s publish failed: %v", item.TargetChannel, publishErr),
		}
		s.appendAudit(actor, "queue.publish", StatusFailed, item.ItemID, result.Message)
	} else {
		item.Status = StatusPublished
		message := outcome.Message
		if message == "" {
			message = "Published successfully"
		}
		result = PublishResult{
			Success:     true,
			Status:      StatusPublished,
			PublishedAt: &now,
			ExternalID:  outcome.ExternalID,
			URL:         outcome.URL,
			Message:     message,
		}
		s.appendAudit(actor, "queue.publish", StatusPublished, item.ItemID, message)
	}

	if item.AccountID != "" {
		s.recordAccountPublish(item.TargetChannel, item.AccountID, result, now)
		s.persistAccounts()
	}
	s.persistState()
	return result, nil
}

// recordAccountPublish updates the bound account's counters and last-publish
// snapshot on every outcome, success or failure.
func (s *Service) recordAccountPublish(channel, accountID string, result PublishResult, at time.Time) {
	account := s.findAccount(channel, accountID)
	if account == nil {
		return
	}
	if result.Success {
		account.SuccessfulPublishes++
	} else {
		account.FailedPublishes++
	}
	account.LastPublish = &LastPublish{
		Status:      result.Status,
		Message:     result.Message,
		PublishedAt: at,
	}
	account.UpdatedAt = at
}

func (s *Service) findQueueItem(itemID string) *PublishQueueItem {
	for i := range s.state.Queue {
		if s.state.Queue[i].ItemID == itemID {
			return &s.state.Queue[i]
		}
	}
	return nil
}

// QueueItems sweeps due scheduled items and returns the queue newest-first.
func (s *Service) QueueItems(ctx context.Context) []PublishQueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processScheduledLocked(ctx)

	items := make([]PublishQueueItem, len(s.state.Queue))
	copy(items, s.state.Queue)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
