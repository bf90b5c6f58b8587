package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/develevate/platform-api/internal/api/handler"
	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
	"github.com/develevate/platform-api/internal/infrastructure/http/handlers"
)

type stubSignup struct {
	verifyErr error
}

func (s *stubSignup) RequestSignup(ctx context.Context, in ports.SignupInput) error {
	if in.Password == "short" {
		return domain.ErrWeakPassword
	}
	return nil
}

func (s *stubSignup) VerifyOTP(ctx context.Context, email, otp string) (*ports.AuthResult, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &ports.AuthResult{User: &domain.User{ID: "u1", Email: email, Role: domain.RoleUser}, Token: "user-token", Created: true}, nil
}

func (s *stubSignup) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return nil, domain.ErrInvalidCredentials
}

func (s *stubSignup) OAuthLogin(ctx context.Context, in ports.OAuthInput) (*ports.AuthResult, error) {
	return nil, errors.New("mongo: timeout")
}

func (s *stubSignup) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "u1" || userID == "a1" {
		return &domain.User{ID: userID, Email: userID + "@example.com"}, nil
	}
	return nil, domain.ErrUserNotFound
}

type stubStreak struct{}

func (stubStreak) RecordActivity(ctx context.Context, userID string) (*ports.StreakSummary, error) {
	return &ports.StreakSummary{NewDay: true, CurrentStreak: 1, LongestStreak: 1, TotalDays: 1}, nil
}

type stubSessions struct{}

func (stubSessions) ParseSession(token string) (string, string, error) {
	switch token {
	case "user-token":
		return "u1", domain.RoleUser, nil
	case "admin-token":
		return "a1", domain.RoleAdmin, nil
	}
	return "", "", errors.New("invalid token")
}

func newTestRouter(signup *stubSignup) http.Handler {
	return NewRouter(RouterDeps{
		Log:             zerolog.Nop(),
		SignupService:   signup,
		StreakService:   stubStreak{},
		Sessions:        stubSessions{},
		Cookies:         handler.CookieConfig{Secure: true, TTL: time.Hour},
		StreakLocation:  time.UTC,
		ReadinessChecks: map[string]handlers.Check{},
		Registerer:      prometheus.NewRegistry(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestRouter_StatusMapping(t *testing.T) {
	cases := []struct {
		name      string
		verifyErr error
		status    int
		code      string
	}{
		{"expired", domain.ErrOTPExpired, http.StatusGone, "otp_expired"},
		{"invalid", domain.ErrInvalidOTP, http.StatusUnauthorized, "invalid_otp"},
		{"no pending", domain.ErrNoPendingRegistration, http.StatusNotFound, "no_pending_registration"},
		{"already active", domain.ErrAlreadyActive, http.StatusConflict, "already_active"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&stubSignup{verifyErr: tc.verifyErr})
			rec, resp := do(t, h, http.MethodPost, "/v1/auth/verify-otp", `{"email":"ada@example.com","otp":"123456"}`, "")
			if rec.Code != tc.status || resp.Code != tc.code {
				t.Fatalf("expected %d/%s, got %d/%s", tc.status, tc.code, rec.Code, resp.Code)
			}
		})
	}
}

func TestRouter_SignupFlow(t *testing.T) {
	h := newTestRouter(&stubSignup{})

	rec, resp := do(t, h, http.MethodPost, "/v1/auth/signup", `{"email":"ada@example.com","name":"Ada","password":"short"}`, "")
	if rec.Code != http.StatusBadRequest || resp.Code != "weak_password" {
		t.Fatalf("expected 400 weak_password, got %d %+v", rec.Code, resp)
	}

	rec, _ = do(t, h, http.MethodPost, "/v1/auth/verify-otp", `{"email":"ada@example.com","otp":"123456"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec, resp = do(t, h, http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"whatever"}`, "")
	if rec.Code != http.StatusUnauthorized || resp.Code != "invalid_credentials" {
		t.Fatalf("expected 401 invalid_credentials, got %d %+v", rec.Code, resp)
	}

	rec, resp = do(t, h, http.MethodPost, "/v1/auth/oauth", `{"email":"ada@example.com"}`, "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(resp.Error, "mongo") {
		t.Fatalf("expected opaque 500, got %d %+v", rec.Code, resp)
	}
}

func TestRouter_AuthenticatedRoutes(t *testing.T) {
	h := newTestRouter(&stubSignup{})

	if rec, _ := do(t, h, http.MethodPost, "/v1/user/streak", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/v1/auth/logout", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 logout without session, got %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/v1/user/streak", "", "user-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/v1/me", "", "user-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /v1/me, got %d", rec.Code)
	}
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	h := newTestRouter(&stubSignup{})

	if rec, _ := do(t, h, http.MethodGet, "/v1/admin/users/u1", "", "user-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/v1/admin/users/u1", "", "admin-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	if rec, resp := do(t, h, http.MethodGet, "/v1/admin/users/missing", "", "admin-token"); rec.Code != http.StatusNotFound || resp.Code != "user_not_found" {
		t.Fatalf("expected 404 user_not_found, got %d %+v", rec.Code, resp)
	}
}

func TestRouter_Probes(t *testing.T) {
	h := newTestRouter(&stubSignup{})

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec, _ := do(t, h, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
