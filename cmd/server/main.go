// @title        DevElevate Platform API
// @version      1.0
// @description  Account activation (OTP signup, login, OAuth) and daily learning streaks.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/develevate/platform-api/internal/api"
	"github.com/develevate/platform-api/internal/api/handler"
	"github.com/develevate/platform-api/internal/core/ports"
	"github.com/develevate/platform-api/internal/core/service"
	mongodb "github.com/develevate/platform-api/internal/infrastructure/db/mongo"
	redisdb "github.com/develevate/platform-api/internal/infrastructure/db/redis"
	"github.com/develevate/platform-api/internal/infrastructure/http/handlers"
	"github.com/develevate/platform-api/internal/infrastructure/mail"
	"github.com/develevate/platform-api/internal/infrastructure/queue"
	"github.com/develevate/platform-api/internal/infrastructure/security"
	"github.com/develevate/platform-api/internal/pkg/config"
	"github.com/develevate/platform-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "platform-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.StreakLocation()
	if err != nil {
		return err
	}

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	users := mongodb.NewUserRepository(db)
	notifications := mongodb.NewNotificationRepository(db)
	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}
	indexers := []mongodb.Indexer{users, notifications}

	var pending ports.PendingRegistrationRepository
	switch cfg.PendingStore {
	case config.PendingStoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		pending = redisdb.NewPendingStore(rdb)
		checks["redis"] = handlers.RedisCheck(rdb)
	default:
		mongoPending := mongodb.NewPendingRegistrationRepository(db)
		pending = mongoPending
		indexers = append(indexers, mongoPending)
	}

	if err := mongodb.EnsureIndexes(ctx, indexers...); err != nil {
		return err
	}

	// --- Collaborators ---
	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, emails will be logged instead of sent")
		mailer = mail.NewLogMailer(logger.Component("mail"))
	}

	sessions := security.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL)
	dispatcher := queue.NewDispatcher(cfg.TaskWorkers, logger.Component("tasks"))
	dispatcher.Start(ctx)

	// --- Services ---
	signupService := service.NewSignupService(service.SignupDeps{
		Users:    users,
		Pending:  pending,
		Hasher:   security.NewBcryptHasher(cfg.BcryptCost),
		Sessions: sessions,
		Mailer:   mailer,
		Notifier: notifications,
		Tasks:    dispatcher,
	}, logger.Component("signup"), service.WithOTPTTL(cfg.OTPTTL))
	streakService := service.NewStreakService(users, loc, time.Now, logger.Component("streaks"))

	e := api.NewRouter(api.RouterDeps{
		Log:             log,
		SignupService:   signupService,
		StreakService:   streakService,
		Sessions:        sessions,
		Cookies:         handler.CookieConfig{Secure: cfg.CookieSecure, TTL: sessions.TTL()},
		StreakLocation:  loc,
		ReadinessChecks: checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("pending_store", cfg.PendingStore).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	dispatcher.Wait()
	return nil
}
