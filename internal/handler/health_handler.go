package handler

import (
	"net/http"
	"time"

	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports service liveness and dependency reachability.
type HealthHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb, startTime: time.Now()}
}

// Health godoc
// GET /health
// Returns 200 when both stores answer a ping, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "ok"
	if err := h.pool.Ping(ctx); err != nil {
		dbStatus = "unreachable"
	}
	redisStatus := "ok"
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
	}

	payload := gin.H{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		"database":       dbStatus,
		"redis":          redisStatus,
	}

	if dbStatus != "ok" || redisStatus != "ok" {
		payload["status"] = "degraded"
		response.Success(c, http.StatusServiceUnavailable, payload)
		return
	}
	response.Success(c, http.StatusOK, payload)
}
