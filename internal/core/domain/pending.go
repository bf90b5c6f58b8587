package domain

import "time"

// PendingRegistration is a signup awaiting OTP confirmation. There is at most one per email.
type PendingRegistration struct {
	Email        string
	Name         string
	Role         string
	PasswordHash string
	OTPHash      string
	ExpiresAt    time.Time
	// Version changes on every upsert; verification only consumes the row it read.
	Version   string
	CreatedAt time.Time
}

// Expired reports whether the OTP is past its TTL at now.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
