package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
)

const (
	defaultOTPTTL = 5 * time.Minute

	otpMin   = 100000
	otpRange = 900000

	welcomeMessage = "Welcome! Your account has been created."
	loginMessage   = "Login successful! Welcome back."
)

// SignupDeps groups the collaborators of SignupService.
type SignupDeps struct {
	Users    ports.UserRepository
	Pending  ports.PendingRegistrationRepository
	Hasher   ports.CredentialHasher
	Sessions ports.SessionIssuer
	Mailer   ports.Mailer
	Notifier ports.Notifier
	Tasks    ports.TaskRunner
}

// SignupService implements the two-phase signup (request, then OTP verification) and
// password / OAuth login.
type SignupService struct {
	deps   SignupDeps
	otpTTL time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// SignupOption customises a SignupService.
type SignupOption func(*SignupService)

// WithOTPTTL overrides how long a signup OTP stays valid.
func WithOTPTTL(ttl time.Duration) SignupOption {
	return func(s *SignupService) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) SignupOption {
	return func(s *SignupService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSignupService(deps SignupDeps, log zerolog.Logger, opts ...SignupOption) *SignupService {
	s := &SignupService{
		deps:   deps,
		otpTTL: defaultOTPTTL,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestSignup stores a pending registration and mails its OTP. A previous pending
// registration for the same email is replaced, which invalidates its OTP.
func (s *SignupService) RequestSignup(ctx context.Context, in ports.SignupInput) error {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.ErrEmailRequired
	}

	if _, err := s.deps.Users.FindByEmail(ctx, email); err == nil {
		return domain.ErrAlreadyActive
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("request signup: find user: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	if len(in.Password) < domain.MinPasswordLength {
		return domain.ErrWeakPassword
	}

	passwordHash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("request signup: hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("request signup: generate otp: %w", err)
	}
	otpHash, err := s.deps.Hasher.Hash(otp)
	if err != nil {
		return fmt.Errorf("request signup: hash otp: %w", err)
	}

	now := s.now()
	pending := &domain.PendingRegistration{
		Email:        email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: passwordHash,
		OTPHash:      otpHash,
		ExpiresAt:    now.Add(s.otpTTL),
		Version:      uuid.NewString(),
		CreatedAt:    now,
	}
	if err := s.deps.Pending.Upsert(ctx, pending); err != nil {
		return fmt.Errorf("request signup: store pending registration: %w", err)
	}

	if err := s.deps.Mailer.SendOTP(ctx, email, otp, s.otpTTL); err != nil {
		return fmt.Errorf("request signup: send otp: %w", err)
	}

	s.log.Info().Str("email", email).Time("expires_at", pending.ExpiresAt).Msg("signup otp issued")
	return nil
}

// VerifyOTP promotes the pending registration for email into a user when otp matches.
// A wrong OTP leaves the pending row in place so the caller may retry until expiry.
func (s *SignupService) VerifyOTP(ctx context.Context, email, otp string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || otp == "" {
		return nil, domain.ErrOTPRequired
	}

	pending, err := s.deps.Pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("verify otp: load pending registration: %w", err)
	}

	if pending.Expired(s.now()) {
		s.discardPending(ctx, pending, "expired")
		return nil, domain.ErrOTPExpired
	}

	if _, err := s.deps.Users.FindByEmail(ctx, email); err == nil {
		// Any pending row for an active identity is dead, whatever its version:
		// a newer signup request would be refused with AlreadyActive too.
		if err := s.deps.Pending.Delete(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Str("reason", "already_active").Msg("failed to discard pending registration")
		}
		return nil, domain.ErrAlreadyActive
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("verify otp: find user: %w", err)
	}

	if !s.deps.Hasher.Verify(otp, pending.OTPHash) {
		return nil, domain.ErrInvalidOTP
	}

	// Claim the exact row that was checked. A concurrent signup request that replaced it
	// issued a new OTP, so the submitted code no longer belongs to the stored row.
	claimed, err := s.deps.Pending.DeleteIfVersion(ctx, email, pending.Version)
	if err != nil {
		return nil, fmt.Errorf("verify otp: claim pending registration: %w", err)
	}
	if !claimed {
		return nil, domain.ErrInvalidOTP
	}

	now := s.now()
	user := &domain.User{
		Email:        pending.Email,
		Name:         pending.Name,
		Role:         pending.Role,
		PasswordHash: pending.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.deps.Users.CreateIfAbsent(ctx, user)
	if err != nil {
		s.restorePending(ctx, pending)
		return nil, fmt.Errorf("verify otp: create user: %w", err)
	}
	if !created {
		return nil, domain.ErrAlreadyActive
	}

	s.deps.Tasks.Go(user.ID, "welcome_email", func(ctx context.Context) error {
		return s.deps.Mailer.SendWelcome(ctx, user.Email, user.Name)
	})
	s.notify(user.ID, welcomeMessage)

	// The account is active from here on. If no session can be issued the caller
	// gets a dependency error and signs in with Login.
	token, err := s.deps.Sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("verify otp: issue session: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("account activated")
	return &ports.AuthResult{User: user, Token: token, Created: true}, nil
}

// Login authenticates a password account and opens a session.
func (s *SignupService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.deps.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	if user.Federated() || !s.deps.Hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.deps.Sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: issue session: %w", err)
	}

	s.notify(user.ID, loginMessage)
	return &ports.AuthResult{User: user, Token: token}, nil
}

// OAuthLogin opens a session for a federated identity, creating the account on first use.
func (s *SignupService) OAuthLogin(ctx context.Context, in ports.OAuthInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	created := false
	user, err := s.deps.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		now := s.now()
		user = &domain.User{
			Email:        email,
			Name:         in.Name,
			Role:         role,
			PasswordHash: domain.FederatedPasswordHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created, err = s.deps.Users.CreateIfAbsent(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("oauth login: create user: %w", err)
		}
		if !created {
			// Lost a race with another first login; use the winner's row.
			user, err = s.deps.Users.FindByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("oauth login: find user: %w", err)
	}

	token, err := s.deps.Sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("oauth login: issue session: %w", err)
	}

	if created {
		s.notify(user.ID, loginMessage)
		s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("federated account created")
	}
	return &ports.AuthResult{User: user, Token: token, Created: created}, nil
}

// Profile returns the account identified by userID.
func (s *SignupService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *SignupService) notify(userID, message string) {
	s.deps.Tasks.Go(userID, "notification", func(ctx context.Context) error {
		return s.deps.Notifier.Notify(ctx, userID, message, ports.NotificationSuccess)
	})
}

// discardPending deletes a pending row that can no longer be verified. The caller's
// result does not depend on the delete succeeding.
func (s *SignupService) discardPending(ctx context.Context, p *domain.PendingRegistration, reason string) {
	if _, err := s.deps.Pending.DeleteIfVersion(ctx, p.Email, p.Version); err != nil {
		s.log.Warn().Err(err).Str("email", p.Email).Str("reason", reason).Msg("failed to discard pending registration")
	}
}

// restorePending puts a claimed row back after a failed promotion, unless a newer signup
// request has already taken its place.
func (s *SignupService) restorePending(ctx context.Context, p *domain.PendingRegistration) {
	if _, err := s.deps.Pending.CreateIfAbsent(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("email", p.Email).Msg("failed to restore pending registration")
	}
}

// generateOTP returns a uniformly random 6-digit code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
