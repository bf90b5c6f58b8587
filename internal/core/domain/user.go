package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// FederatedPasswordHash marks accounts created through a third-party identity assertion.
// It is not a valid bcrypt digest, so no password ever verifies against it.
const FederatedPasswordHash = "federated-oauth"

// ValidRole reports whether role is one the platform knows about.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeEmail is the canonical form used as the identity key in every store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VisitRecord marks one calendar day on which the user was active.
type VisitRecord struct {
	Day      time.Time `json:"day"`
	Recorded bool      `json:"recorded"`
}

// User is an activated account.
type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Role          string        `json:"role"`
	PasswordHash  string        `json:"-"`
	VisitLog      []VisitRecord `json:"-"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Federated reports whether the account can only sign in through OAuth.
func (u *User) Federated() bool {
	return u.PasswordHash == FederatedPasswordHash
}

// VisitDays returns the day of every visit in the log.
func (u *User) VisitDays() []time.Time {
	days := make([]time.Time, 0, len(u.VisitLog))
	for _, v := range u.VisitLog {
		days = append(days, v.Day)
	}
	return days
}
