package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ForwarderConfig controls best-effort mirroring of audit entries to the
// external audit sink.
type ForwarderConfig struct {
	Enabled     bool
	BaseURL     string
	Timeout     time.Duration
	Source      string
	IngestToken string
}

// Forwarder posts audit entries to the external sink. Delivery is strictly
// best-effort: failures suspend forwarding with exponential backoff and are
// never surfaced to the operation that produced the entry.
type Forwarder struct {
	config ForwarderConfig
	client *http.Client
	logger zerolog.Logger

	mu             sync.Mutex
	failureCount   int
	suspendedUntil time.Time
}

func NewForwarder(config ForwarderConfig, logger zerolog.Logger) *Forwarder {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	if strings.TrimSpace(config.Source) == "" {
		config.Source = "module.brand_studio"
	}
	return &Forwarder{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NewForwarderFromEnv reads BRAND_STUDIO_AUDIT_* variables.
func NewForwarderFromEnv(logger zerolog.Logger) *Forwarder {
	return NewForwarder(ForwarderConfig{
		Enabled:     envFlag("BRAND_STUDIO_AUDIT_PUBLISH_ENABLED", false),
		BaseURL:     envDefault("BRAND_STUDIO_AUDIT_CORE_BASE_URL", "http://127.0.0.1:8000"),
		Timeout:     envDurationSeconds("BRAND_STUDIO_AUDIT_TIMEOUT_SECONDS", 800*time.Millisecond),
		Source:      envDefault("BRAND_STUDIO_AUDIT_SOURCE", "module.brand_studio"),
		IngestToken: strings.TrimSpace(os.Getenv("BRAND_STUDIO_AUDIT_INGEST_TOKEN")),
	}, logger)
}

// PublishEntry forwards one entry and reports whether delivery succeeded.
func (f *Forwarder) PublishEntry(entry Entry) bool {
	if f == nil || !f.config.Enabled {
		return false
	}

	f.mu.Lock()
	if time.Now().Before(f.suspendedUntil) {
		f.mu.Unlock()
		return false
	}
	f.mu.Unlock()

	context := strings.TrimSpace(entry.Details)
	if context == "" {
		context = entry.PayloadHash
	}
	payload := map[string]any{
		"id":     f.config.Source + ":" + entry.ID,
		"source": f.config.Source,
		"action": entry.Action,
		"actor":  entry.Actor,
		"status": entry.Status,
		"context": context,
		"details": map[string]any{
			"module_event_id":     entry.ID,
			"module_payload_hash": entry.PayloadHash,
			"module_details":      entry.Details,
		},
		"timestamp": entry.Timestamp.Format(time.RFC3339Nano),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	url := strings.TrimRight(f.config.BaseURL, "/") + "/api/v1/audit/stream"
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	request.Header.Set("Content-Type", "application/json")
	if f.config.IngestToken != "" {
		request.Header.Set("X-Audit-Token", f.config.IngestToken)
	}

	response, err := f.client.Do(request)
	if err == nil {
		defer response.Body.Close()
		if response.StatusCode < http.StatusBadRequest {
			f.mu.Lock()
			f.failureCount = 0
			f.suspendedUntil = time.Time{}
			f.mu.Unlock()
			return true
		}
		err = fmt.Errorf("audit sink returned %s", response.Status)
	}

	f.mu.Lock()
	f.failureCount++
	exponent := f.failureCount
	if exponent > 6 {
		exponent = 6
	}
	backoff := time.Duration(1<<uint(exponent)) * time.Second
	if backoff > time.Minute {
		backoff = time.Minute
	}
	f.suspendedUntil = time.Now().Add(backoff)
	f.mu.Unlock()

	f.logger.Debug().Err(err).Dur("backoff", backoff).Msg("audit forwarding suspended")
	return false
}

func envFlag(name string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func envDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envDurationSeconds(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}
