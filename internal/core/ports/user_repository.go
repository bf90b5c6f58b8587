package ports

import (
	"context"

	"github.com/develevate/platform-api/internal/core/domain"
)

// UserRepository persists activated accounts and their visit log.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// CreateIfAbsent inserts user unless the email is taken. It reports whether the row was
	// created and, if so, sets user.ID.
	CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error)
	// AppendVisit adds visit to the user's log unless a record for the same day exists.
	AppendVisit(ctx context.Context, userID string, visit domain.VisitRecord) (bool, error)
	// UpdateStreaks sets the current streak and raises the longest streak to at least longest.
	UpdateStreaks(ctx context.Context, userID string, current, longest int) error
}
