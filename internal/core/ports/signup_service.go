package ports

import (
	"context"

	"github.com/develevate/platform-api/internal/core/domain"
)

// SignupInput is the payload of a signup request.
type SignupInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// OAuthInput carries an identity already verified by a third-party provider.
type OAuthInput struct {
	Email string
	Name  string
	Role  string
}

// AuthResult is returned by every operation that opens a session.
type AuthResult struct {
	User    *domain.User
	Token   string
	Created bool
}

// SignupService drives account activation and session creation.
type SignupService interface {
	RequestSignup(ctx context.Context, in SignupInput) error
	VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	OAuthLogin(ctx context.Context, in OAuthInput) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
