package handler

import (
	"time"

	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
)

// Public endpoints only create plain users; admins are provisioned out of band.
type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=user"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// oauthRequest carries an identity already verified by the OAuth provider.
type oauthRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"max=100"`
	Role  string `json:"role"  validate:"omitempty,oneof=user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	TotalDays     int       `json:"total_days"`
	CreatedAt     time.Time `json:"created_at"`
}

type sessionResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type visitResponse struct {
	Day      string `json:"day"`
	Recorded bool   `json:"recorded"`
}

type streakResponse struct {
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	TotalDays     int             `json:"total_days"`
	Visits        []visitResponse `json:"visits"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		TotalDays:     len(u.VisitLog),
		CreatedAt:     u.CreatedAt,
	}
}

// toStreakResponse renders visit days as dates in loc, the zone that defines a streak day.
func toStreakResponse(s *ports.StreakSummary, loc *time.Location) streakResponse {
	visits := make([]visitResponse, 0, len(s.Visits))
	for _, v := range s.Visits {
		visits = append(visits, visitResponse{Day: v.Day.In(loc).Format(time.DateOnly), Recorded: v.Recorded})
	}
	return streakResponse{
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		TotalDays:     s.TotalDays,
		Visits:        visits,
	}
}
