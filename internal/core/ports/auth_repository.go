package ports

import (
	"context"
	"time"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create persists user. A duplicate email or business identifier is
	// reported as domain.ErrEmailInUse.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
}

// ResetTokenStore keeps single-use password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user the token was issued for and deletes it.
	// Unknown or expired tokens yield domain.ErrInvalidResetToken.
	Consume(ctx context.Context, token string) (string, error)
}
