package ports

import (
	"context"

	"github.com/develevate/platform-api/internal/core/domain"
)

// PendingRegistrationRepository holds at most one in-flight signup per email.
type PendingRegistrationRepository interface {
	// Get returns domain.ErrNoPendingRegistration when no row exists.
	Get(ctx context.Context, email string) (*domain.PendingRegistration, error)
	// Upsert replaces any row stored for the same email.
	Upsert(ctx context.Context, p *domain.PendingRegistration) error
	// CreateIfAbsent stores p only when no row exists for its email.
	CreateIfAbsent(ctx context.Context, p *domain.PendingRegistration) (bool, error)
	Delete(ctx context.Context, email string) error
	// DeleteIfVersion removes the row only if it still carries version.
	DeleteIfVersion(ctx context.Context, email, version string) (bool, error)
}
