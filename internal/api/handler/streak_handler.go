package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/develevate/platform-api/internal/api/metrics"
	"github.com/develevate/platform-api/internal/core/ports"
)

type StreakHandler struct {
	streakService ports.StreakService
	loc           *time.Location
}

func NewStreakHandler(streakService ports.StreakService, loc *time.Location) *StreakHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakHandler{streakService: streakService, loc: loc}
}

// RecordActivity marks today as visited for the caller and returns the updated streaks.
// Repeating the call on the same day changes nothing.
//
// @Summary      Record daily activity
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  streakResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/user/streak [post]
func (h *StreakHandler) RecordActivity(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.streakService.RecordActivity(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	result := "repeat"
	if summary.NewDay {
		result = "new_day"
	}
	metrics.VisitsRecordedTotal.WithLabelValues(result).Inc()
	metrics.CurrentStreakLength.Observe(float64(summary.CurrentStreak))

	return c.JSON(http.StatusOK, toStreakResponse(summary, h.loc))
}
