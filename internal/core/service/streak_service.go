package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
	"github.com/develevate/platform-api/internal/pkg/keylock"
)

// StreakService records daily visits and derives the visit streaks from them.
type StreakService struct {
	users ports.UserRepository
	locks *keylock.Striped
	loc   *time.Location
	now   func() time.Time
	log   zerolog.Logger
}

// NewStreakService returns a StreakService that evaluates calendar days in loc
// (UTC when nil). now may be nil.
func NewStreakService(users ports.UserRepository, loc *time.Location, now func() time.Time, log zerolog.Logger) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &StreakService{
		users: users,
		locks: keylock.New(0),
		loc:   loc,
		now:   now,
		log:   log,
	}
}

// RecordActivity records a visit for today and recomputes the streak counters while
// holding the user's critical section.
func (s *StreakService) RecordActivity(ctx context.Context, userID string) (*ports.StreakSummary, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	appended, err := s.recordVisit(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	summary, err := s.recomputeStreaks(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	summary.NewDay = appended
	return summary, nil
}

// RecordVisit appends a visit for the calendar day of now unless one already exists.
// It reports whether a record was appended.
func (s *StreakService) RecordVisit(ctx context.Context, userID string, now time.Time) (bool, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.recordVisit(ctx, userID, now)
}

// RecomputeStreaks derives current and longest streaks from the visit log as of now and
// persists them. The longest streak never decreases.
func (s *StreakService) RecomputeStreaks(ctx context.Context, userID string, now time.Time) (*ports.StreakSummary, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.recomputeStreaks(ctx, userID, now)
}

func (s *StreakService) recordVisit(ctx context.Context, userID string, now time.Time) (bool, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("record visit: %w", err)
	}

	for _, v := range user.VisitLog {
		if domain.SameDay(v.Day, now, s.loc) {
			return false, nil
		}
	}

	visit := domain.VisitRecord{Day: domain.CalendarDay(now, s.loc), Recorded: true}
	appended, err := s.users.AppendVisit(ctx, userID, visit)
	if err != nil {
		return false, fmt.Errorf("record visit: append: %w", err)
	}
	if appended {
		s.log.Debug().Str("user_id", userID).Time("day", visit.Day).Msg("visit recorded")
	}
	return appended, nil
}

func (s *StreakService) recomputeStreaks(ctx context.Context, userID string, now time.Time) (*ports.StreakSummary, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recompute streaks: %w", err)
	}

	current, longest := domain.ComputeStreaks(user.VisitDays(), now, s.loc)
	if user.LongestStreak > longest {
		longest = user.LongestStreak
	}

	if current != user.CurrentStreak || longest != user.LongestStreak {
		if err := s.users.UpdateStreaks(ctx, userID, current, longest); err != nil {
			return nil, fmt.Errorf("recompute streaks: update: %w", err)
		}
	}

	return &ports.StreakSummary{
		CurrentStreak: current,
		LongestStreak: longest,
		TotalDays:     len(user.VisitLog),
		Visits:        user.VisitLog,
	}, nil
}

func (s *StreakService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
