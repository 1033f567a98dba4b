package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hospital/pharmacy-api/internal/api/handler"
	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
	"github.com/hospital/pharmacy-api/internal/core/service"
	"github.com/hospital/pharmacy-api/internal/core/token"
)

// ---------------------------------------------------------------------------
// In-memory collaborators
// ---------------------------------------------------------------------------

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return nil, domain.ErrEmailInUse
	}
	clone := *u
	clone.ID = "id-" + u.UserID
	r.users[u.Email] = &clone
	out := clone
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		out := *u
		return &out, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByUserID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == userID {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}

type noopResets struct{}

func (noopResets) Save(context.Context, string, string, time.Duration) error { return nil }
func (noopResets) Consume(context.Context, string) (string, error) {
	return "", domain.ErrInvalidResetToken
}

type noopQueue struct{}

func (noopQueue) Enqueue(ports.MailMessage) {}

type dashboardOnly struct {
	ports.PharmacyService
}

func (dashboardOnly) Dashboard(context.Context) (*ports.DashboardStats, error) {
	return &ports.DashboardStats{TotalMedicines: 3, PendingPrescriptions: 1}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type testServer struct {
	t     *testing.T
	codec *token.Codec
	srv   http.Handler
}

func newTestServer(t *testing.T, bootstrap bool) *testServer {
	t.Helper()
	codec := token.NewCodec("test-secret", time.Hour)
	auth := service.NewAuthService(
		&memUserRepo{users: make(map[string]*domain.User)},
		codec,
		noopResets{},
		noopQueue{},
		service.AuthOptions{
			AdminEmail:    "admin@hospital.com",
			AdminPassword: "admin123",
			BcryptCost:    bcrypt.MinCost,
		},
		zerolog.Nop(),
	)

	e := NewRouter(Dependencies{
		Auth:             auth,
		Resolver:         auth,
		Pharmacy:         dashboardOnly{},
		ReadinessChecks:  map[string]handler.DependencyCheck{},
		AllowedOrigins:   []string{"http://localhost:3000"},
		BootstrapEnabled: bootstrap,
		Registry:         prometheus.NewRegistry(),
		Logger:           zerolog.Nop(),
	})
	return &testServer{t: t, codec: codec, srv: e}
}

func (s *testServer) do(method, path, body, bearer string) (int, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.srv.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec.Code, resp
}

func (s *testServer) register(email, role string) string {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/auth/register",
		`{"email":"`+email+`","password":"pw-123","firstName":"Test","lastName":"User","role":"`+role+`"}`, "")
	require.Equal(s.t, http.StatusCreated, code, "%v", resp)
	return resp["token"].(string)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_LoginRegisterLoginScenario(t *testing.T) {
	s := newTestServer(t, true)

	code, resp := s.do(http.MethodPost, "/auth/login", `{"email":"house@hospital.com","password":"vicodin"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", resp["message"])

	code, resp = s.do(http.MethodPost, "/auth/register",
		`{"email":"house@hospital.com","password":"vicodin","firstName":"Gregory","lastName":"House","role":"doctor"}`, "")
	require.Equal(t, http.StatusCreated, code)
	userID := resp["userId"].(string)
	assert.Regexp(t, `^DOC-[0-9A-F]{8}$`, userID)
	assert.Equal(t, "DOCTOR", resp["role"])

	code, resp = s.do(http.MethodPost, "/auth/login", `{"email":"house@hospital.com","password":"vicodin"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userID, resp["userId"])

	claims, err := s.codec.Decode(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "DOCTOR", claims.Role)

	code, resp = s.do(http.MethodPost, "/auth/register",
		`{"email":"house@hospital.com","password":"other","role":"doctor"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already in use", resp["message"])
}

func TestRouter_ValidateEndpoint(t *testing.T) {
	s := newTestServer(t, true)
	tok := s.register("cuddy@hospital.com", "admin")

	code, resp := s.do(http.MethodGet, "/auth/validate", "", tok)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cuddy@hospital.com", resp["email"])
	assert.Equal(t, "ADMIN", resp["role"])

	code, resp = s.do(http.MethodGet, "/auth/validate", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "Invalid token", resp["message"])
}

func TestRouter_RoleGuard(t *testing.T) {
	s := newTestServer(t, true)
	doctor := s.register("wilson@hospital.com", "doctor")
	pharmacist := s.register("chase@hospital.com", "pharmacist")

	code, resp := s.do(http.MethodGet, "/pharmacist/dashboard", "", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied", resp["message"])

	code, _ = s.do(http.MethodGet, "/pharmacist/dashboard", "", "not-a-jwt")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/pharmacist/dashboard", "", doctor)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(http.MethodGet, "/pharmacist/dashboard", "", pharmacist)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), resp["totalMedicines"])
	assert.Equal(t, float64(1), resp["pendingPrescriptions"])

	code, _ = s.do(http.MethodPost, "/doctor/prescriptions", `{"patientName":"x","items":[]}`, pharmacist)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_CreateAdmin(t *testing.T) {
	s := newTestServer(t, true)

	code, resp := s.do(http.MethodPost, "/auth/create-admin", "", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "admin@hospital.com", resp["email"])
	assert.Equal(t, "admin123", resp["password"])

	code, resp = s.do(http.MethodPost, "/auth/create-admin", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Admin user already exists", resp["message"])

	code, resp = s.do(http.MethodPost, "/auth/login", `{"email":"admin@hospital.com","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ADMIN", resp["role"])
	assert.Regexp(t, `^ADM-[0-9A-F]{8}$`, resp["userId"])
}

func TestRouter_CreateAdminDisabled(t *testing.T) {
	s := newTestServer(t, false)

	code, _ := s.do(http.MethodPost, "/auth/create-admin", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	code, resp := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])

	code, _ = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}
