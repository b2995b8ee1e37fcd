package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting fintrack", "port", cfg.Port, "backend", cfg.DataBackend)

	res := cli.InitBackend(context.Background(), logger, cfg)
	store := res.Backend

	catalog := services.NewCategoryCatalog(store)
	if err := catalog.SeedDefaults(context.Background()); err != nil {
		logger.Error("Failed to seed categories", "error", err)
		os.Exit(1)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; API tokens will not survive a restart")
	}

	var ledger *services.LedgerService
	if res.Publisher != nil {
		ledger = services.NewLedgerService(store, catalog, res.Publisher)
	} else {
		logger.Info("AMQP disabled, ledger events will not be published")
		ledger = services.NewLedgerService(store, catalog, nil)
	}

	appLogger := applog.New(applog.Config{
		Handler:   logger.Handler(),
		Component: applog.ComponentApp,
	})

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Credentials: services.NewCredentialService(store),
		Sessions:    services.NewSessionService(store, cfg.SessionTTL),
		Ledger:      ledger,
		Reports:     services.NewReportService(store),
		Categories:  catalog,
		Tokens:      auth.NewTokenIssuer(secret, cfg.JWTTTL),
		Health:      store,
	}, apphttp.Options{
		Logger:             appLogger,
		SecureCookies:      cfg.SecureCookies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Failed to close backend", "error", err)
			}
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
