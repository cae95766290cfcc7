package service

import (
	"strings"

	"github.com/google/uuid"
)

const confirmationCodeLength = 8

// GenerateConfirmationCode returns an 8-character uppercase code derived from
// a v4 UUID. Uniqueness is enforced by the orders table constraint, not here;
// callers retry on a collision.
func GenerateConfirmationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:confirmationCodeLength])
}
