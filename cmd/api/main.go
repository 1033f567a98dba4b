// Command api serves the hospital pharmacy HTTP API.
//
// @title                       Hospital Pharmacy API
// @version                     1.0
// @description                 Authentication, role-gated pharmacist and doctor operations for the hospital pharmacy.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/hospital/pharmacy-api/docs"
	"github.com/hospital/pharmacy-api/internal/api"
	"github.com/hospital/pharmacy-api/internal/api/handler"
	"github.com/hospital/pharmacy-api/internal/core/ports"
	"github.com/hospital/pharmacy-api/internal/core/service"
	"github.com/hospital/pharmacy-api/internal/core/token"
	mongodb "github.com/hospital/pharmacy-api/internal/infrastructure/db/mongo"
	redisdb "github.com/hospital/pharmacy-api/internal/infrastructure/db/redis"
	"github.com/hospital/pharmacy-api/internal/infrastructure/mail"
	"github.com/hospital/pharmacy-api/internal/infrastructure/queue"
	"github.com/hospital/pharmacy-api/internal/pkg/config"
	"github.com/hospital/pharmacy-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "pharmacy-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Mail ---
	var mailer ports.Mailer
	if cfg.SMTP.Host == "" {
		mailer = mail.NewLogMailer(logger.Component("mail"))
	} else {
		smtp, err := mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Pass,
			Sender:   cfg.SMTP.Sender,
		})
		if err != nil {
			return err
		}
		mailer = smtp
	}
	dispatcher := queue.NewMailDispatcher(cfg.SMTP.Workers, mailer, logger.Component("mail"))
	dispatcher.Start(ctx)

	// --- Services ---
	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	authService := service.NewAuthService(
		mongodb.NewUserRepository(db),
		codec,
		redisdb.NewResetTokenStore(rdb),
		dispatcher,
		service.AuthOptions{
			SubjectLookup: cfg.Auth.SubjectLookup,
			AdminEmail:    cfg.Auth.BootstrapEmail,
			AdminPassword: cfg.Auth.BootstrapPassword,
			ResetTokenTTL: cfg.Auth.ResetTokenTTL,
			ResetURL:      cfg.ResetURL(),
		},
		logger.Component("auth"),
	)
	pharmacyService := service.NewPharmacyService(
		mongodb.NewMedicineRepository(db),
		mongodb.NewCompanyRepository(db),
		mongodb.NewDistributorRepository(db),
		mongodb.NewPrescriptionRepository(db),
		logger.Component("pharmacy"),
	)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Resolver: authService,
		Pharmacy: pharmacyService,
		ReadinessChecks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		AllowedOrigins:   cfg.AllowedOrigins(),
		BootstrapEnabled: cfg.Auth.BootstrapEnabled,
		Logger:           logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
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
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
