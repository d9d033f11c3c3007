package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"horse.fit/brandstudio/internal/globaltime"
)

const maxDetailLength = 500

// Entry is one append-only audit row. Entries are never mutated or deleted;
// insertion order defines the log order.
type Entry struct {
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	Status      string    `json:"status"`
	PayloadHash string    `json:"payload_hash"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEntry builds an entry with a sha256 hash of payload and truncated
// human-readable details.
func NewEntry(actor, action, status, payload, details string) Entry {
	sum := sha256.Sum256([]byte(payload))
	return Entry{
		ID:          "audit-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		Actor:       actor,
		Action:      action,
		Status:      status,
		PayloadHash: hex.EncodeToString(sum[:]),
		Details:     truncateDetails(details),
		Timestamp:   globaltime.UTC(),
	}
}

func truncateDetails(details string) string {
	trimmed := strings.TrimSpace(details)
	if len(trimmed) <= maxDetailLength {
		return trimmed
	}
	return trimmed[:maxDetailLength]
}
