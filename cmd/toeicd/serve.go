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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/toeic-session-service/internal/cache"
	"github.com/SAP-F-2025/toeic-session-service/internal/config"
	"github.com/SAP-F-2025/toeic-session-service/internal/handlers"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/toeic-session-service/internal/services"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
	"github.com/SAP-F-2025/toeic-session-service/internal/validator"
	"github.com/SAP-F-2025/toeic-session-service/pkg"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		return serve(cmd.Context(), migrate)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run schema migrations before serving")
}

func serve(ctx context.Context, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(os.Stdout, cfg.IsProduction())
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := postgres.AutoMigrate(db); err != nil {
			return err
		}
	}

	store := newCache(ctx, cfg, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	svcs := services.NewServiceManager(
		postgres.NewRepository(db),
		store,
		publisher,
		validator.New(),
		services.SessionSettings{
			Warnings:            cfg.Session.Warnings,
			Tick:                cfg.Session.Tick,
			RequireConfirmation: cfg.Session.RequireConfirmation,
			FinalizeTimeout:     cfg.Session.FinalizeTimeout,
			CheckpointInterval:  cfg.Session.CheckpointInterval,
		},
		cfg.Session.SnapshotTTL,
		logger,
	)
	defer svcs.Session().Shutdown()

	restored, err := svcs.Session().Recover(ctx)
	if err != nil {
		logger.Error("Failed to restore open sessions", "error", err)
	} else {
		logger.Info("Restored open sessions", "count", restored)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.NewHandlerManager(svcs, handlers.NewCasdoorParser(cfg.Casdoor), utils.NewSlogLogger(logger)).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCache prefers redis and falls back to an in-process cache, which keeps
// sessions resumable only within this process.
func newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.CacheService {
	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory session cache", "error", err)
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(client, logger)
}
