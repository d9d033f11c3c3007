package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// GenerationError marks any failure to obtain model output. Callers treat it
// as a signal to substitute deterministic fallback content, never as a
// reason to fail the surrounding operation.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "llm generation failed: " + e.Reason
}

// Config controls the streaming LLM backend.
type Config struct {
	Enabled     bool
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client calls the core LLM streaming endpoint. Responses arrive as SSE
// frames (event: content|error|done) and are concatenated into one string.
type Client struct {
	config Config
	client *http.Client
}

func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 25 * time.Second
	}
	if config.MaxTokens < 64 {
		config.MaxTokens = 800
	}
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// NewClientFromEnv reads BRAND_STUDIO_LLM_* variables. The backend is
// disabled unless explicitly enabled.
func NewClientFromEnv() *Client {
	return NewClient(Config{
		Enabled:     envFlag("BRAND_STUDIO_LLM_ENABLED", false),
		BaseURL:     strings.TrimSpace(os.Getenv("BRAND_STUDIO_LLM_CORE_BASE_URL")),
		Timeout:     envDurationSeconds("BRAND_STUDIO_LLM_TIMEOUT_SECONDS", 25*time.Second),
		MaxTokens:   envInt("BRAND_STUDIO_LLM_MAX_TOKENS", 800),
		Temperature: envFloat("BRAND_STUDIO_LLM_TEMPERATURE", 0.3),
	})
}

func (c *Client) Enabled() bool {
	return c != nil && c.config.Enabled
}

// GenerateText streams one completion for prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", &GenerationError{Reason: "llm disabled"}
	}

	body, err := json.Marshal(map[string]any{
		"content":     prompt,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Reason: fmt.Sprintf("encode request: %v", err)}
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/v1/llm/simple/stream"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Reason: fmt.Sprintf("build request: %v", err)}
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "text/event-stream")

	response, err := c.client.Do(request)
	if err != nil {
		return "", &GenerationError{Reason: fmt.Sprintf("http: %v", err)}
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return "", &GenerationError{Reason: fmt.Sprintf("llm endpoint returned %s", response.Status)}
	}

	content, err := collectStream(response.Body)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", &GenerationError{Reason: "empty response"}
	}
	return content, nil
}

func collectStream(body io.Reader) (string, error) {
	var chunks strings.Builder
	currentEvent := ""

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "event:"); ok {
			currentEvent = strings.TrimSpace(after)
			continue
		}
		after, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data := strings.TrimSpace(after)

		switch currentEvent {
		case "content":
			var packet struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(data), &packet); err != nil {
				return "", &GenerationError{Reason: "stream decode error"}
			}
			chunks.WriteString(packet.Text)
		case "error":
			reason := "stream error"
			var packet struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(data), &packet); err == nil && strings.TrimSpace(packet.Message) != "" {
				reason = packet.Message
			}
			return "", &GenerationError{Reason: reason}
		case "done":
			return strings.TrimSpace(chunks.String()), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &GenerationError{Reason: fmt.Sprintf("read stream: %v", err)}
	}
	return strings.TrimSpace(chunks.String()), nil
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

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
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
