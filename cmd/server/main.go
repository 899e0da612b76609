package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/database"
	"github.com/axonlms/integrity-engine/internal/handler"
	"github.com/axonlms/integrity-engine/internal/logger"
	"github.com/axonlms/integrity-engine/internal/repository"
	"github.com/axonlms/integrity-engine/internal/router"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/axonlms/integrity-engine/internal/taskmeta"
	"github.com/axonlms/integrity-engine/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Integrity Engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	assessmentSessionRepo := repository.NewAssessmentSessionRepository(pool)
	responseRepo := repository.NewQuestionResponseRepository(pool)
	mcqRepo := repository.NewMCQOptionRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	integritySessionRepo := repository.NewIntegritySessionRepository(pool)
	eventRepo := repository.NewProctorEventRepository(pool)
	flagRepo := repository.NewIntegrityFlagRepository(pool)

	// ─── Task Metadata Provider ────────────────────────────────────────
	tasks := taskmeta.NewCachedProvider(
		taskmeta.NewHTTPProvider(cfg.TaskServiceURL),
		rdb,
		cfg.TaskCacheTTL,
	)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	integrityService := service.NewIntegrityService(integritySessionRepo, eventRepo, flagRepo, rdb, cfg, log)
	assessmentService := service.NewAssessmentService(
		assessmentSessionRepo, responseRepo, mcqRepo, analyticsRepo,
		tasks, integrityService, cfg, log,
	)
	analyticsService := service.NewAnalyticsService(assessmentSessionRepo, tasks, cfg, log)
	reportService := service.NewReportService(cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		Integrity:  handler.NewIntegrityHandler(integrityService),
		Analysis:   handler.NewAnalysisHandler(integrityService, cfg, log),
		Report:     handler.NewReportHandler(reportService, log),
		WS:         handler.NewWSHandler(rdb, integrityService, log, cfg.AllowedOrigins),
		Health:     handler.NewHealthHandler(pool, rdb),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
