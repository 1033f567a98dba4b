package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
	"github.com/hospital/pharmacy-api/internal/core/token"
)

// Subject lookup modes for the request authorizer.
const (
	LookupByUserID = "user_id"
	LookupByEmail  = "email"
)

const defaultResetTTL = time.Hour

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var errPasswordTooLong = fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)

// AuthOptions configures the authentication gate.
type AuthOptions struct {
	// SubjectLookup selects how ResolveIdentity maps a token subject to a
	// user: LookupByUserID (default) or LookupByEmail. Issued tokens always
	// carry the userId, so LookupByEmail resolves none of them.
	SubjectLookup string
	AdminEmail    string
	AdminPassword string
	ResetTokenTTL time.Duration
	// ResetURL is the page that receives the reset token as ?token=.
	ResetURL   string
	BcryptCost int
}

// AuthService implements login, registration, admin bootstrap, token
// validation and password reset.
type AuthService struct {
	repo   ports.UserRepository
	codec  *token.Codec
	resets ports.ResetTokenStore
	mail   ports.MailQueue
	opts   AuthOptions
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	repo ports.UserRepository,
	codec *token.Codec,
	resets ports.ResetTokenStore,
	mail ports.MailQueue,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.SubjectLookup == "" {
		opts.SubjectLookup = LookupByUserID
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = defaultResetTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:   repo,
		codec:  codec,
		resets: resets,
		mail:   mail,
		opts:   opts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password are both reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	s.log.Info().Str("email", email).Msg("login attempt")
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Str("email", email).Msg("login for unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("email", email).Msg("login with wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	tkn, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("email", email).Str("user_id", user.UserID).Msg("login succeeded")
	return &ports.AuthResult{Token: tkn, User: user}, nil
}

// Register creates a user, derives its business identifier from the role and
// issues a token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	role := domain.NormalizeRole(in.Role)
	user, err := s.newUser(in.Email, in.Password, in.FirstName, in.LastName, role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	tkn, err := s.codec.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("email", created.Email).Str("user_id", created.UserID).Str("role", role).Msg("user registered")
	return &ports.AuthResult{Token: tkn, User: created}, nil
}

// BootstrapAdmin creates the configured admin account when no admin exists.
func (s *AuthService) BootstrapAdmin(ctx context.Context) (*ports.BootstrapResult, error) {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if n > 0 {
		return nil, domain.ErrAdminExists
	}

	admin, err := s.newUser(s.opts.AdminEmail, s.opts.AdminPassword, "Admin", "User", domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	created, err := s.repo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.log.Warn().Str("email", created.Email).Msg("initial admin created; disable the bootstrap endpoint")
	return &ports.BootstrapResult{User: created, Email: created.Email, Password: s.opts.AdminPassword}, nil
}

// Validate resolves an Authorization header to its user by business
// identifier. Every failure collapses to domain.ErrUnauthorized.
func (s *AuthService) Validate(ctx context.Context, authHeader string) (*domain.User, error) {
	raw, ok := token.FromBearer(authHeader)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("validate: token rejected")
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByUserID(ctx, claims.Subject)
	if err != nil {
		s.log.Debug().Err(err).Str("subject", claims.Subject).Msg("validate: subject not resolved")
		return nil, domain.ErrUnauthorized
	}

	if !s.codec.Verify(claims, user) {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// ResolveIdentity maps a bearer token to the identity attached to a request.
// The subject is resolved according to AuthOptions.SubjectLookup.
func (s *AuthService) ResolveIdentity(ctx context.Context, raw string) (*domain.Identity, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	if s.opts.SubjectLookup == LookupByEmail {
		user, err = s.repo.FindByEmail(ctx, claims.Subject)
	} else {
		user, err = s.repo.FindByUserID(ctx, claims.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	if !s.codec.Verify(claims, user) {
		return nil, token.ErrInvalidToken
	}
	return &domain.Identity{User: user, Role: user.Role}, nil
}

// ForgotPassword stores a reset token for email and queues the reset link.
// Unknown emails are not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	resetToken := uuid.NewString()
	if err := s.resets.Save(ctx, resetToken, user.UserID, s.opts.ResetTokenTTL); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	msg, err := resetLinkMessage(user, s.resetLink(resetToken), s.opts.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	s.mail.Enqueue(msg)

	s.log.Info().Str("user_id", user.UserID).Msg("password reset link queued")
	return nil
}

// ResetPassword consumes resetToken and replaces the user's password.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" {
		return domain.ErrInvalidResetToken
	}
	if password == "" {
		return domain.ErrInvalidInput
	}

	// Hash before consuming so a rejected password leaves the token usable.
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	userID, err := s.resets.Consume(ctx, resetToken)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash), s.now()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("password reset")
	return nil
}

func (s *AuthService) hashPassword(password string) ([]byte, error) {
	if len(password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
}

func (s *AuthService) newUser(email, password, firstName, lastName, role string) (*domain.User, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &domain.User{
		UserID:       generateUserID(role),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *AuthService) resetLink(resetToken string) string {
	sep := "?"
	if strings.Contains(s.opts.ResetURL, "?") {
		sep = "&"
	}
	return s.opts.ResetURL + sep + "token=" + resetToken
}
