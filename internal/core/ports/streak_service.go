package ports

import (
	"context"

	"github.com/develevate/platform-api/internal/core/domain"
)

// StreakSummary is the engagement state after an activity is recorded.
type StreakSummary struct {
	// NewDay is set when this call appended today's visit.
	NewDay        bool
	CurrentStreak int
	LongestStreak int
	TotalDays     int
	Visits        []domain.VisitRecord
}

// StreakService records visits and keeps the streak counters up to date.
type StreakService interface {
	// RecordActivity records today's visit and recomputes the streaks as one operation.
	RecordActivity(ctx context.Context, userID string) (*StreakSummary, error)
}
