package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/brandstudio/internal/studio"
)

var validTones = map[string]struct{}{
	"neutral": {},
	"expert":  {},
	"short":   {},
	"cta":     {},
}

type generateDraftRequest struct {
	CandidateID string   `json:"candidate_id"`
	Channels    []string `json:"channels"`
	Languages   []string `json:"languages"`
	Tone        string   `json:"tone"`
	CampaignID  string   `json:"campaign_id"`
}

type queueDraftRequest struct {
	TargetChannel   string     `json:"target_channel"`
	TargetLanguage  string     `json:"target_language"`
	AccountID       string     `json:"account_id"`
	Target          string     `json:"target"`
	TargetRepo      string     `json:"target_repo"`
	TargetPath      string     `json:"target_path"`
	PayloadOverride string     `json:"payload_override"`
	CampaignID      string     `json:"campaign_id"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	PublishMode     string     `json:"publish_mode"`
}

type publishRequest struct {
	ConfirmPublish bool `json:"confirm_publish"`
}

type createStrategyRequest struct {
	Name           string `json:"name"`
	BaseStrategyID string `json:"base_strategy_id"`
	studio.StrategyPatch
}

type createAccountRequest struct {
	DisplayName       string   `json:"display_name"`
	Target            string   `json:"target"`
	Role              string   `json:"role"`
	SupportsAccountID string   `json:"supports_account_id"`
	Enabled           *bool    `json:"enabled"`
	IsDefault         bool     `json:"is_default"`
	Capabilities      []string `json:"capabilities"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, s.service.HealthPayload())
}

func (s *Server) handleCandidates(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultCandidateLimit, 1, maxCandidateLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	minScore, err := parseScore(c.QueryParam("min_score"))
	if err != nil {
		return failValidation(c, map[string]string{"min_score": err.Error()})
	}

	filter := studio.ListFilter{
		Channel:  strings.TrimSpace(strings.ToLower(c.QueryParam("channel"))),
		Lang:     strings.TrimSpace(strings.ToLower(c.QueryParam("lang"))),
		Limit:    limit,
		MinScore: minScore,
	}
	items, refreshedAt := s.service.ListCandidates(c.Request().Context(), filter)

	return success(c, map[string]any{
		"items":        items,
		"count":        len(items),
		"refreshed_at": refreshedAt,
	})
}

func (s *Server) handleRefresh(c echo.Context) error {
	items, refreshedAt := s.service.ForceRefresh(c.Request().Context())
	return success(c, map[string]any{
		"items":        items,
		"count":        len(items),
		"refreshed_at": refreshedAt,
	})
}

func (s *Server) handleGenerateDraft(c echo.Context) error {
	var req generateDraftRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.CandidateID) == "" {
		return failValidation(c, map[string]string{"candidate_id": "is required"})
	}

	tone := strings.TrimSpace(strings.ToLower(req.Tone))
	if tone == "" {
		tone = "neutral"
	}
	if _, ok := validTones[tone]; !ok {
		return failValidation(c, map[string]string{"tone": "must be one of neutral, expert, short, cta"})
	}

	// Omitted channels/languages fall back to the active strategy.
	active := s.service.ActiveConfig()
	channels := req.Channels
	if len(channels) == 0 {
		channels = active.ActiveChannels
	}
	languages := req.Languages
	if len(languages) == 0 {
		languages = active.DraftLanguages
	}

	bundle, err := s.service.GenerateDraft(c.Request().Context(), studio.DraftRequest{
		CandidateID: req.CandidateID,
		Channels:    channels,
		Languages:   languages,
		Tone:        tone,
		CampaignID:  req.CampaignID,
		Actor:       actorFrom(c),
	})
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, bundle)
}

func (s *Server) handleQueueDraft(c echo.Context) error {
	draftID := strings.TrimSpace(c.Param("draft_id"))
	if draftID == "" {
		return failValidation(c, map[string]string{"draft_id": "is required"})
	}

	var req queueDraftRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.TargetChannel) == "" {
		return failValidation(c, map[string]string{"target_channel": "is required"})
	}

	item, err := s.service.QueueDraft(studio.QueueRequest{
		DraftID:         draftID,
		TargetChannel:   req.TargetChannel,
		TargetLanguage:  req.TargetLanguage,
		AccountID:       req.AccountID,
		Target:          req.Target,
		TargetRepo:      req.TargetRepo,
		TargetPath:      req.TargetPath,
		PayloadOverride: req.PayloadOverride,
		CampaignID:      req.CampaignID,
		ScheduledAt:     req.ScheduledAt,
		PublishMode:     req.PublishMode,
		Actor:           actorFrom(c),
	})
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return successWithStatus(c, http.StatusCreated, item)
}

func (s *Server) handleQueueList(c echo.Context) error {
	items := s.service.QueueItems(c.Request().Context())
	return success(c, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handlePublish(c echo.Context) error {
	itemID := strings.TrimSpace(c.Param("item_id"))
	if itemID == "" {
		return failValidation(c, map[string]string{"item_id": "is required"})
	}

	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	result, err := s.service.Publish(c.Request().Context(), itemID, req.ConfirmPublish, actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, result)
}

func (s *Server) handleProcessQueue(c echo.Context) error {
	published := s.service.ProcessScheduledQueue(c.Request().Context())
	return success(c, map[string]any{"published": published})
}

func (s *Server) handleAudit(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultAuditLimit, 1, maxAuditLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	entries := s.service.AuditItems()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return success(c, map[string]any{
		"items": entries,
		"count": len(entries),
	})
}

func (s *Server) handleConfigGet(c echo.Context) error {
	return success(c, s.service.ActiveConfig())
}

func (s *Server) handleConfigUpdate(c echo.Context) error {
	var patch studio.StrategyPatch
	if err := c.Bind(&patch); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	updated, err := s.service.UpdateActiveConfig(patch, actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, updated)
}

func (s *Server) handleStrategiesList(c echo.Context) error {
	strategies, activeID := s.service.Strategies()
	return success(c, map[string]any{
		"items":     strategies,
		"active_id": activeID,
	})
}

func (s *Server) handleStrategyCreate(c echo.Context) error {
	var req createStrategyRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return failValidation(c, map[string]string{"name": "is required"})
	}

	created, err := s.service.CreateStrategy(studio.CreateStrategyRequest{
		Name:           req.Name,
		BaseStrategyID: req.BaseStrategyID,
		Patch:          req.StrategyPatch,
		Actor:          actorFrom(c),
	})
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return successWithStatus(c, http.StatusCreated, created)
}

func (s *Server) handleStrategyUpdate(c echo.Context) error {
	var patch studio.StrategyPatch
	if err := c.Bind(&patch); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	updated, err := s.service.UpdateStrategy(c.Param("strategy_id"), patch, actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, updated)
}

func (s *Server) handleStrategyDelete(c echo.Context) error {
	if err := s.service.DeleteStrategy(c.Param("strategy_id"), actorFrom(c)); err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, map[string]any{"deleted": true})
}

func (s *Server) handleStrategyActivate(c echo.Context) error {
	activated, err := s.service.ActivateStrategy(c.Param("strategy_id"), actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, activated)
}

func (s *Server) handleChannels(c echo.Context) error {
	return success(c, map[string]any{
		"items": s.service.Channels(),
	})
}

func (s *Server) handleAccountsList(c echo.Context) error {
	accounts := s.service.ChannelAccounts(c.Param("channel"))
	return success(c, map[string]any{
		"items": accounts,
		"count": len(accounts),
	})
}

func (s *Server) handleAccountCreate(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return failValidation(c, map[string]string{"display_name": "is required"})
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	account, err := s.service.CreateAccount(studio.CreateAccountRequest{
		Channel:           c.Param("channel"),
		DisplayName:       req.DisplayName,
		Target:            req.Target,
		Role:              req.Role,
		SupportsAccountID: req.SupportsAccountID,
		Enabled:           enabled,
		IsDefault:         req.IsDefault,
		Capabilities:      req.Capabilities,
		Actor:             actorFrom(c),
	})
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return successWithStatus(c, http.StatusCreated, account)
}

func (s *Server) handleAccountUpdate(c echo.Context) error {
	var patch studio.AccountPatch
	if err := c.Bind(&patch); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	updated, err := s.service.UpdateAccount(c.Param("channel"), c.Param("account_id"), patch, actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, updated)
}

func (s *Server) handleAccountDelete(c echo.Context) error {
	if err := s.service.DeleteAccount(c.Param("channel"), c.Param("account_id"), actorFrom(c)); err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, map[string]any{"deleted": true})
}

func (s *Server) handleAccountActivate(c echo.Context) error {
	account, err := s.service.SetDefaultAccount(c.Param("channel"), c.Param("account_id"), actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, account)
}

func (s *Server) handleAccountTest(c echo.Context) error {
	result, err := s.service.TestAccount(c.Request().Context(), c.Param("channel"), c.Param("account_id"), actorFrom(c))
	if err != nil {
		return s.writeServiceError(c, err)
	}
	return success(c, result)
}
