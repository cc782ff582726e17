package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/handlers"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// @title Vault Ledger API
// @version 1.0
// @description Sales, payments and vault accounts on an append-only ledger.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token from "ledgerctl token".

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	infra, err := buildInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc, err := services.NewServiceContainer(cfg, infra.repos,
		services.WithLocker(infra.locker),
		services.WithEventPublisher(infra.publisher),
	)
	if err != nil {
		return err
	}

	accounts, err := svc.Account.Bootstrap(ctx, domain.DefaultAccountSeeds(cfg.DefaultCurrency))
	if err != nil {
		return err
	}
	logger.Info("Vault accounts ready", slog.Int("count", len(accounts)))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	if err := handlers.RegisterRoutes(r, cfg, svc, handlers.RouteOptions{
		IdempotencyStore: infra.stateStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      infra.limiter,
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.IntegrityInterval > 0 {
		g.Go(func() error {
			services.RunIntegrityMonitor(gctx, svc.Integrity, cfg.IntegrityInterval, logger)
			return nil
		})
	}
	return g.Wait()
}
