package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogMailer writes messages to the log instead of sending them. Used in
// development when SMTP_HOST is unset.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOTP(_ context.Context, email, code string, ttl time.Duration) error {
	m.log.Info().
		Str("email", email).
		Str("otp", code).
		Dur("ttl", ttl).
		Msg("otp email (not sent, smtp disabled)")
	return nil
}

func (m *LogMailer) SendWelcome(_ context.Context, email, name string) error {
	m.log.Info().
		Str("email", email).
		Str("name", name).
		Msg("welcome email (not sent, smtp disabled)")
	return nil
}
