package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/develevate/platform-api/docs"
	"github.com/develevate/platform-api/internal/api/handler"
	"github.com/develevate/platform-api/internal/api/middleware"
	"github.com/develevate/platform-api/internal/core/domain"
	"github.com/develevate/platform-api/internal/core/ports"
	"github.com/develevate/platform-api/internal/infrastructure/http/handlers"
)

// RouterDeps carries everything the HTTP layer needs. Services are built by the caller.
type RouterDeps struct {
	Log             zerolog.Logger
	SignupService   ports.SignupService
	StreakService   ports.StreakService
	Sessions        middleware.SessionParser
	Cookies         handler.CookieConfig
	StreakLocation  *time.Location
	ReadinessChecks map[string]handlers.Check
	// Registerer receives the HTTP request metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "develevate",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.SignupService, deps.Cookies)
	streakHandler := handler.NewStreakHandler(deps.StreakService, deps.StreakLocation)
	adminHandler := handler.NewAdminHandler(deps.SignupService)
	requireSession := middleware.Auth(deps.Sessions)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/login", authHandler.Login)
	auth.POST("/oauth", authHandler.OAuth)
	auth.POST("/logout", authHandler.Logout, requireSession)

	// --- Authenticated user routes ---
	v1.GET("/me", authHandler.Me, requireSession)
	v1.POST("/user/streak", streakHandler.RecordActivity, requireSession)

	// --- Admin routes ---
	admin := v1.Group("/admin", requireSession, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users/:id", adminHandler.GetUser)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
