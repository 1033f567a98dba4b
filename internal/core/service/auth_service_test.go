package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
	"github.com/hospital/pharmacy-api/internal/core/token"
)

type stubUserRepo struct {
	users     map[string]*domain.User // keyed by email
	nextID    int
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailInUse
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("%024x", r.nextID)
	r.users[copy.Email] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUserID(_ context.Context, userID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.UserID == userID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, userID, hash string, at time.Time) error {
	for _, u := range r.users {
		if u.UserID == userID {
			u.PasswordHash = hash
			u.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type stubResetStore struct {
	tokens map[string]string
	ttls   map[string]time.Duration
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubResetStore) Save(_ context.Context, tkn, userID string, ttl time.Duration) error {
	s.tokens[tkn] = userID
	s.ttls[tkn] = ttl
	return nil
}

func (s *stubResetStore) Consume(_ context.Context, tkn string) (string, error) {
	userID, ok := s.tokens[tkn]
	if !ok {
		return "", domain.ErrInvalidResetToken
	}
	delete(s.tokens, tkn)
	return userID, nil
}

type recordingQueue struct {
	sent []ports.MailMessage
}

func (q *recordingQueue) Enqueue(msg ports.MailMessage) { q.sent = append(q.sent, msg) }

type authFixture struct {
	svc    *AuthService
	repo   *stubUserRepo
	resets *stubResetStore
	mail   *recordingQueue
	codec  *token.Codec
}

func newAuthFixture(opts AuthOptions) *authFixture {
	f := &authFixture{
		repo:   newStubUserRepo(),
		resets: newStubResetStore(),
		mail:   &recordingQueue{},
		codec:  token.NewCodec("secret", time.Hour),
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@hospital.com"
		opts.AdminPassword = "admin123"
	}
	if opts.ResetURL == "" {
		opts.ResetURL = "http://localhost:3000/login/resetPassword"
	}
	opts.BcryptCost = bcrypt.MinCost
	f.svc = NewAuthService(f.repo, f.codec, f.resets, f.mail, opts, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, email, password, role string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: email, Password: password, FirstName: "A", LastName: "B", Role: role,
	})
	require.NoError(t, err)
	return res
}

var userIDPattern = regexp.MustCompile(`^(DOC|PHM|RCP|ADM|USR)-[0-9A-F]{8}$`)

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	res := f.register(t, "a@x.com", "p1", "doctor")

	assert.NotEmpty(t, res.Token)
	assert.Regexp(t, `^DOC-[0-9A-F]{8}$`, res.User.UserID)
	assert.Equal(t, domain.RoleDoctor, res.User.Role)
	assert.True(t, res.User.Active)
	assert.False(t, res.User.CreatedAt.IsZero())
	assert.Equal(t, res.User.CreatedAt, res.User.UpdatedAt)
	assert.NotEqual(t, "p1", res.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("p1")))
}

func TestAuthService_Register_UserIDPrefixFollowsRole(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	cases := map[string]string{
		"doctor":       "DOC-",
		"PHARMACIST":   "PHM-",
		"Receptionist": "RCP-",
		"admin":        "ADM-",
		"janitor":      "USR-",
	}
	for role, prefix := range cases {
		res := f.register(t, role+"@x.com", "pw", role)
		assert.True(t, userIDPattern.MatchString(res.User.UserID), res.User.UserID)
		assert.True(t, strings.HasPrefix(res.User.UserID, prefix), "role %s got %s", role, res.User.UserID)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	_, first := f.svc.Register(context.Background(), ports.RegisterInput{Email: "bob@x.com", Password: "p", Role: "doctor"})
	_, second := f.svc.Register(context.Background(), ports.RegisterInput{Email: "bob@x.com", Password: "p2", Role: "doctor"})

	require.NoError(t, first)
	assert.ErrorIs(t, second, domain.ErrEmailInUse)
}

func TestAuthService_Register_StoreRaceReportsEmailInUse(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	f.repo.createErr = domain.ErrEmailInUse

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "c@x.com", Password: "p", Role: "doctor"})
	assert.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "", Password: "p", Role: "doctor"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Register(context.Background(), ports.RegisterInput{Email: "d@x.com", Password: "p", Role: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "long@x.com", Password: strings.Repeat("p", 80), Role: "doctor",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.repo.users)

	res := f.register(t, "edge@x.com", strings.Repeat("p", 72), "doctor")
	assert.NotEmpty(t, res.Token)
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	registered := f.register(t, "carol@x.com", "s3cret", "pharmacist")

	res, err := f.svc.Login(context.Background(), "carol@x.com", "s3cret")
	require.NoError(t, err)

	claims, err := f.codec.Decode(res.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.UserID, claims.Subject)
	assert.Equal(t, domain.RolePharmacist, claims.Role)
	assert.NotEmpty(t, res.User.ID)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	f.register(t, "dave@x.com", "goodpass", "doctor")

	_, unknown := f.svc.Login(context.Background(), "ghost@x.com", "goodpass")
	_, wrong := f.svc.Login(context.Background(), "dave@x.com", "badpass")
	_, empty := f.svc.Login(context.Background(), "dave@x.com", "")

	for _, err := range []error{unknown, wrong, empty} {
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestAuthService_Scenario_RegisterThenLogin(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, "invalid email or password", err.Error())

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Email: "a@x.com", Password: "p1", Role: "doctor", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	assert.Regexp(t, `^DOC-[0-9A-F]{8}$`, reg.User.UserID)

	login, err := f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	claims, err := f.codec.Decode(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, claims.Subject)
	assert.Equal(t, "DOCTOR", login.User.Role)
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	res, err := f.svc.BootstrapAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin@hospital.com", res.Email)
	assert.Equal(t, "admin123", res.Password)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.Regexp(t, `^ADM-[0-9A-F]{8}$`, res.User.UserID)

	_, err = f.svc.BootstrapAdmin(context.Background())
	assert.ErrorIs(t, err, domain.ErrAdminExists)

	login, err := f.svc.Login(context.Background(), "admin@hospital.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, login.User.Role)
}

func TestAuthService_BootstrapAdmin_AdminFromRegistration(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	f.register(t, "other-admin@x.com", "pw", "admin")

	_, err := f.svc.BootstrapAdmin(context.Background())
	assert.ErrorIs(t, err, domain.ErrAdminExists)
}

func TestAuthService_Validate(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	reg := f.register(t, "v@x.com", "pw", "receptionist")

	user, err := f.svc.Validate(context.Background(), "Bearer "+reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, user.UserID)

	for _, header := range []string{"", reg.Token, "Token " + reg.Token, "Bearer garbage"} {
		_, err := f.svc.Validate(context.Background(), header)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "header %q", header)
	}
}

func TestAuthService_Validate_ExpiredToken(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	reg := f.register(t, "exp@x.com", "pw", "doctor")

	past := time.Now().Add(-2 * time.Hour)
	old := token.NewCodec("secret", time.Hour, token.WithClock(func() time.Time { return past }))
	stale, err := old.Issue(reg.User)
	require.NoError(t, err)

	_, err = f.svc.Validate(context.Background(), "Bearer "+stale)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Validate_UnknownSubject(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	ghost := &domain.User{UserID: "DOC-DEADBEEF", Role: domain.RoleDoctor}
	raw, err := f.codec.Issue(ghost)
	require.NoError(t, err)

	_, err = f.svc.Validate(context.Background(), "Bearer "+raw)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ResolveIdentity_ByUserID(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	reg := f.register(t, "p@x.com", "pw", "pharmacist")

	id, err := f.svc.ResolveIdentity(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, id.User.UserID)
	assert.Equal(t, domain.RolePharmacist, id.Role)
}

func TestAuthService_ResolveIdentity_EmailLookupDoesNotResolveUserIDSubjects(t *testing.T) {
	f := newAuthFixture(AuthOptions{SubjectLookup: LookupByEmail})
	reg := f.register(t, "p@x.com", "pw", "pharmacist")

	_, err := f.svc.ResolveIdentity(context.Background(), reg.Token)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_ResolveIdentity_InvalidToken(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	_, err := f.svc.ResolveIdentity(context.Background(), "nope")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(AuthOptions{ResetTokenTTL: 30 * time.Minute})
	reg := f.register(t, "r@x.com", "old", "doctor")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "r@x.com"))
	require.Len(t, f.mail.sent, 1)
	require.Len(t, f.resets.tokens, 1)

	var resetToken string
	for tkn, userID := range f.resets.tokens {
		resetToken = tkn
		assert.Equal(t, reg.User.UserID, userID)
		assert.Equal(t, 30*time.Minute, f.resets.ttls[tkn])
	}
	msg := f.mail.sent[0]
	assert.Equal(t, "r@x.com", msg.To)
	assert.Contains(t, msg.HTMLBody, "http://localhost:3000/login/resetPassword?token="+resetToken)

	require.NoError(t, f.svc.ResetPassword(ctx, resetToken, "new"))

	_, err := f.svc.Login(ctx, "r@x.com", "old")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "r@x.com", "new")
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, resetToken, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func TestAuthService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	err := f.svc.ForgotPassword(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, f.mail.sent)
	assert.Empty(t, f.resets.tokens)
}

func TestAuthService_ResetPassword_Validation(t *testing.T) {
	f := newAuthFixture(AuthOptions{})

	assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "", "pw"), domain.ErrInvalidResetToken)
	assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "tkn", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), "unknown", "pw"), domain.ErrInvalidResetToken)
}

func TestAuthService_ResetPassword_DeletedUser(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	f.resets.tokens["orphan"] = "DOC-00000000"

	err := f.svc.ResetPassword(context.Background(), "orphan", "pw")
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_ResetPassword_TooLongKeepsToken(t *testing.T) {
	f := newAuthFixture(AuthOptions{})
	f.register(t, "keep@x.com", "old", "doctor")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "keep@x.com"))
	var resetToken string
	for tkn := range f.resets.tokens {
		resetToken = tkn
	}

	err := f.svc.ResetPassword(ctx, resetToken, strings.Repeat("x", 73))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, f.resets.tokens, resetToken)

	require.NoError(t, f.svc.ResetPassword(ctx, resetToken, "new"))
	_, err = f.svc.Login(ctx, "keep@x.com", "new")
	assert.NoError(t, err)
}
