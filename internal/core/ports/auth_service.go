package ports

import (
	"context"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string
	User  *domain.User
}

// BootstrapResult describes the admin created by BootstrapAdmin. Password
// is the plaintext credential so the operator can log in once.
type BootstrapResult struct {
	User     *domain.User
	Email    string
	Password string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	BootstrapAdmin(ctx context.Context) (*BootstrapResult, error)
	// Validate resolves a raw Authorization header value to its user.
	Validate(ctx context.Context, authHeader string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// IdentityResolver turns a bearer token into the caller's identity for the
// request authorizer.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, bearerToken string) (*domain.Identity, error)
}
