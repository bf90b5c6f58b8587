package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
)

type stubSignupService struct {
	requestSignupFn func(ctx context.Context, in ports.SignupInput) error
	verifyOTPFn     func(ctx context.Context, email, otp string) (*ports.AuthResult, error)
	loginFn         func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	oauthLoginFn    func(ctx context.Context, in ports.OAuthInput) (*ports.AuthResult, error)
	profileFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubSignupService) RequestSignup(ctx context.Context, in ports.SignupInput) error {
	return s.requestSignupFn(ctx, in)
}

func (s *stubSignupService) VerifyOTP(ctx context.Context, email, otp string) (*ports.AuthResult, error) {
	return s.verifyOTPFn(ctx, email, otp)
}

func (s *stubSignupService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSignupService) OAuthLogin(ctx context.Context, in ports.OAuthInput) (*ports.AuthResult, error) {
	return s.oauthLoginFn(ctx, in)
}

func (s *stubSignupService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

type stubStreakService struct {
	recordActivityFn func(ctx context.Context, userID string) (*ports.StreakSummary, error)
}

func (s *stubStreakService) RecordActivity(ctx context.Context, userID string) (*ports.StreakSummary, error) {
	return s.recordActivityFn(ctx, userID)
}

var testCookies = CookieConfig{Secure: true, TTL: 72 * time.Hour}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a request context with an optional JSON body.
func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func activeUser() *domain.User {
	return &domain.User{
		ID:            "user-1",
		Email:         "ada@example.com",
		Name:          "Ada",
		Role:          domain.RoleUser,
		PasswordHash:  "secret-hash",
		CurrentStreak: 3,
		LongestStreak: 5,
		VisitLog: []domain.VisitRecord{
			{Day: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), Recorded: true},
		},
	}
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
