package handler

import (
	"net/http"
	"strings"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/service"
	ws "github.com/axonlms/integrity-engine/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams proctor events to live monitors over WebSocket.
type WSHandler struct {
	rdb              *redis.Client
	integrityService *service.IntegrityService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, integrityService *service.IntegrityService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:              rdb,
		integrityService: integrityService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// SessionEventStream godoc
// WS /ws/v1/integrity/sessions/:session_uuid/stream
// Upgrades to WebSocket and forwards the session's proctor events as they
// are recorded. Fanout comes from Redis Pub/Sub; Postgres is authoritative.
func (h *WSHandler) SessionEventStream(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	// The session must exist before we hold a connection open for it.
	if _, err := h.integrityService.GetSession(c.Request.Context(), sessionUUID); err != nil {
		failIntegrity(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_uuid", sessionUUID).Logger()
	wsLog.Info().Msg("Monitor connected")

	channel := config.CacheKey.SessionEventsChannel(sessionUUID)
	sub := h.rdb.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, SessionUUID: sessionUUID}); err != nil {
		return
	}

	// Reader goroutine: drains client messages, answers pings, and signals
	// when the peer goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Info().Msg("Monitor disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case msg, open := <-events:
			if !open {
				wsLog.Warn().Msg("Event subscription closed")
				return
			}
			err := ws.WriteTyped(conn, ws.ProctorEventResponse{
				Event:   ws.EventProctor,
				Payload: []byte(msg.Payload),
			})
			if err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping monitor")
				return
			}
		}
	}
}
