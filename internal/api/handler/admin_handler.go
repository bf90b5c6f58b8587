package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/develevate/platform-api/internal/core/ports"
)

type AdminHandler struct {
	authService ports.SignupService
}

func NewAdminHandler(authService ports.SignupService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// GetUser returns any user's profile and streak counters.
//
// @Summary      Get user (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	user, err := h.authService.Profile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
