// Package mail delivers account emails over SMTP, or to the log when no SMTP
// server is configured.
package mail

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const (
	otpSubject     = "Your DevElevate verification code"
	welcomeSubject = "Welcome to DevElevate"

	defaultSendTimeout = 15 * time.Second
	implicitTLSPort    = 465
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds one delivery, from dial to QUIT. Defaults to 15s.
	Timeout time.Duration
}

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer implements ports.Mailer with go-mail.
type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	m := &SMTPMailer{cfg: cfg, now: time.Now}
	m.send = m.dialAndSend
	return m
}

func (m *SMTPMailer) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	body, err := renderOTP(code, ttl)
	if err != nil {
		return err
	}
	return m.deliver(ctx, email, otpSubject, body)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	body, err := renderWelcome(name)
	if err != nil {
		return err
	}
	return m.deliver(ctx, email, welcomeSubject, body)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg(gomail.WithEncoding(gomail.NoEncoding))
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp recipient %s: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(m.now())
	msg.SetBodyString(gomail.TypeTextHTML, body)
	return msg, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(m.cfg.Timeout),
		gomail.WithDialContextFunc(dialWithDeadline),
	}
	if m.cfg.Port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// dialWithDeadline carries the context deadline onto the connection, so a server
// that stops answering mid-conversation cannot hold the caller past it.
func dialWithDeadline(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}
