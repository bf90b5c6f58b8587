package ports

import (
	"context"
	"time"
)

// CredentialHasher is a salted one-way hash used for passwords and OTP codes.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// SessionIssuer mints an opaque bearer token bound to a user.
type SessionIssuer interface {
	Issue(userID, role string) (string, error)
}

// Mailer delivers messages to an email address. SendOTP is on the mandatory signup path;
// SendWelcome is best-effort.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
	SendWelcome(ctx context.Context, email, name string) error
}

// NotificationSuccess is the kind of account and login notifications.
const NotificationSuccess = "success"

// Notifier records an in-app notification for a user.
type Notifier interface {
	Notify(ctx context.Context, userID, message, kind string) error
}

// TaskRunner runs fire-and-forget work away from the request path. Failures are reported
// by the runner itself and never reach the submitter.
type TaskRunner interface {
	Go(key, name string, fn func(ctx context.Context) error)
}
