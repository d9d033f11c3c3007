package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewEntry_HashAndTruncation(t *testing.T) {
	t.Parallel()

	entry := NewEntry("operator", "queue.publish", "published", "queue-1", "detail")
	if entry.PayloadHash != "bf3a302a50e55914e2a2da9287b3ca61892817996144c3d47780e8c24dbb8a10" {
		t.Fatalf("unexpected sha256 for payload %q: %s", "queue-1", entry.PayloadHash)
	}
	if entry.Action != "queue.publish" || entry.Actor != "operator" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	long := make([]byte, 2*maxDetailLength)
	for i := range long {
		long[i] = 'x'
	}
	truncated := NewEntry("a", "b", "c", "d", string(long))
	if len(truncated.Details) != maxDetailLength {
		t.Fatalf("expected details truncated to %d, got %d", maxDetailLength, len(truncated.Details))
	}
}

func TestForwarder_PublishEntry(t *testing.T) {
	t.Parallel()

	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode forwarded payload: %v", err)
		}
		if payload["source"] != "module.brand_studio" {
			t.Errorf("unexpected source: %v", payload["source"])
		}
		received.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	forwarder := NewForwarder(ForwarderConfig{Enabled: true, BaseURL: server.URL}, zerolog.Nop())
	if !forwarder.PublishEntry(NewEntry("op", "queue.create", "queued", "queue-1", "")) {
		t.Fatalf("expected delivery to succeed")
	}
	if received.Load() != 1 {
		t.Fatalf("expected one delivery, got %d", received.Load())
	}
}

func TestForwarder_DisabledAndBackoff(t *testing.T) {
	t.Parallel()

	disabled := NewForwarder(ForwarderConfig{Enabled: false}, zerolog.Nop())
	if disabled.PublishEntry(NewEntry("op", "a", "s", "p", "")) {
		t.Fatalf("disabled forwarder must not deliver")
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	failing := NewForwarder(ForwarderConfig{Enabled: true, BaseURL: server.URL, Timeout: time.Second}, zerolog.Nop())
	if failing.PublishEntry(NewEntry("op", "a", "s", "p", "")) {
		t.Fatalf("expected delivery failure")
	}
	// Second attempt lands inside the backoff window and must not hit the sink.
	if failing.PublishEntry(NewEntry("op", "a", "s", "p", "")) {
		t.Fatalf("expected suspended delivery")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single upstream call during backoff, got %d", calls.Load())
	}
}
