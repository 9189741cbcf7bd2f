package parking

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short identifier for tickets and payments.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
