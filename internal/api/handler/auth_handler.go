package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/develevate/platform-api/internal/api/metrics"
	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.SignupService
	cookies     CookieConfig
	now         func() time.Time
}

func NewAuthHandler(authService ports.SignupService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, now: time.Now}
}

// Signup starts a registration and emails a one-time code.
//
// @Summary      Request signup
// @Description  Stores a pending registration and emails a 6-digit code. Repeating the request replaces the pending registration and invalidates the previous code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.RequestSignup(c.Request().Context(), ports.SignupInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	metrics.SignupRequestsTotal.WithLabelValues(resultLabel(err, "otp_sent")).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "OTP sent to email. Please verify to complete signup."})
}

// VerifyOTP activates the account and opens a session.
//
// @Summary      Verify signup code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and code"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Router       /v1/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	metrics.OTPVerificationsTotal.WithLabelValues(resultLabel(err, "activated")).Inc()
	if err != nil {
		return err
	}

	return h.session(c, http.StatusCreated, "User registered successfully", res)
}

// Login authenticates with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues("password", resultLabel(err, "ok")).Inc()
	if err != nil {
		return err
	}

	return h.session(c, http.StatusOK, "Login successful", res)
}

// OAuth opens a session for an identity verified by an OAuth provider, creating the
// account on first use.
//
// @Summary      OAuth login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      oauthRequest  true  "Verified identity"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/auth/oauth [post]
func (h *AuthHandler) OAuth(c echo.Context) error {
	var req oauthRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.OAuthLogin(c.Request().Context(), ports.OAuthInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	metrics.LoginsTotal.WithLabelValues("oauth", resultLabel(err, "ok")).Inc()
	if err != nil {
		return err
	}

	return h.session(c, http.StatusOK, "Login successful", res)
}

// Logout clears the session cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, err := ctxUserID(c); err != nil {
		return err
	}
	c.SetCookie(h.cookies.cleared())
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the caller's profile.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) session(c echo.Context, status int, message string, res *ports.AuthResult) error {
	c.SetCookie(h.cookies.session(res.Token, h.now()))
	return c.JSON(status, sessionResponse{
		Message: message,
		Token:   res.Token,
		User:    toUserResponse(res.User),
	})
}

// resultLabel is the metric label for an operation outcome.
func resultLabel(err error, success string) string {
	if err == nil {
		return success
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}
