package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/develevate/platform-api/internal/api/middleware"
)

// ctxUserID extracts the user id injected by the Auth middleware. A missing id
// means the route was mounted without Auth; fail closed with 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}
