package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin        = "ADMIN"
	RoleDoctor       = "DOCTOR"
	RolePharmacist   = "PHARMACIST"
	RoleReceptionist = "RECEPTIONIST"
)

// rolePrefixes maps a normalized role to the prefix of its business identifier.
var rolePrefixes = map[string]string{
	RoleDoctor:       "DOC",
	RolePharmacist:   "PHM",
	RoleReceptionist: "RCP",
	RoleAdmin:        "ADM",
}

// DefaultUserIDPrefix is used for roles outside the known set.
const DefaultUserIDPrefix = "USR"

// NormalizeRole uppercases a role as received from a client.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// UserIDPrefix returns the business identifier prefix for role. Input is
// matched case-insensitively.
func UserIDPrefix(role string) string {
	if p, ok := rolePrefixes[NormalizeRole(role)]; ok {
		return p
	}
	return DefaultUserIDPrefix
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
