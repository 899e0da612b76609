package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/handler"
	"github.com/axonlms/integrity-engine/internal/middleware"
	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Assessment *handler.AssessmentHandler
	Analytics  *handler.AnalyticsHandler
	Integrity  *handler.IntegrityHandler
	Analysis   *handler.AnalysisHandler
	Report     *handler.ReportHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", handlers.Health.Health)

	// Telemetry analysis is CPU-bound and client-driven; cap it per IP.
	analysisLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Assessment Group (Learner JWT) ─────────────────────────────
	assessments := router.Group("/api/v1/assessments")
	assessments.Use(middleware.RequireJWT(authService))
	{
		assessments.POST("/start", handlers.Assessment.Start)
		assessments.POST("/:session_id/responses", handlers.Assessment.SubmitResponse)
		assessments.POST("/:session_id/submit", handlers.Assessment.Submit)
		assessments.GET("/:session_id/status", handlers.Assessment.Status)

		assessments.GET("/tasks/:task_id/analytics",
			middleware.RequireRole(service.RoleReviewer, service.RoleAdmin),
			handlers.Analytics.TaskAnalytics,
		)
	}

	// ─── 2. Integrity Group (JWT) ──────────────────────────────────────
	integrity := router.Group("/api/v1/integrity")
	integrity.Use(middleware.RequireJWT(authService))
	{
		// Session lifecycle and telemetry ingestion (any authenticated caller).
		integrity.POST("/sessions", handlers.Integrity.CreateSession)
		integrity.GET("/sessions/:session_uuid", handlers.Integrity.GetSession)
		integrity.PUT("/sessions/:session_uuid/status", handlers.Integrity.UpdateSessionStatus)
		integrity.POST("/events", handlers.Integrity.RecordEvent)
		integrity.POST("/events/batch", handlers.Integrity.RecordEventsBatch)

		integrity.POST("/analyze/gaze",
			analysisLimiter.Middleware(),
			handlers.Analysis.AnalyzeGaze,
		)
		integrity.POST("/analyze/mouse-drift",
			analysisLimiter.Middleware(),
			handlers.Analysis.AnalyzeMouseDrift,
		)

		// Review surface (reviewers and admins only).
		review := integrity.Group("")
		review.Use(middleware.RequireRole(service.RoleReviewer, service.RoleAdmin))
		{
			review.GET("/sessions/:session_uuid/events", handlers.Integrity.ListSessionEvents)
			review.GET("/sessions/:session_uuid/flags", handlers.Integrity.ListSessionFlags)
			review.GET("/sessions/:session_uuid/analysis", handlers.Integrity.AnalyzeSession)
			review.GET("/users/:user_id/events", handlers.Integrity.ListUserEvents)
			review.GET("/users/:user_id/sessions/active", handlers.Integrity.ListActiveSessions)
			review.POST("/flags", handlers.Integrity.CreateFlag)
			review.GET("/flags/pending", handlers.Integrity.ListPendingFlags)
			review.PUT("/flags/:flag_id/decision", handlers.Integrity.UpdateFlagDecision)
			review.GET("/cohorts/:cohort_id/overview", handlers.Integrity.CohortOverview)
			review.POST("/report", handlers.Report.Generate)
		}
	}

	// ─── 3. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/integrity/sessions/:session_uuid/stream", handlers.WS.SessionEventStream)
	}

	return router
}
