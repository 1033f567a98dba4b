package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// newBusinessID returns an identifier in the format PREFIX-XXXXXXXX where the
// suffix is eight uppercase hex digits.
func newBusinessID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// generateUserID derives the business identifier for a new user from the
// role it was registered with.
func generateUserID(role string) string {
	return newBusinessID(domain.UserIDPrefix(role))
}
