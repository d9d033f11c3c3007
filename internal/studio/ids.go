package studio

import (
	"strings"

	"github.com/google/uuid"
)

func newID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
