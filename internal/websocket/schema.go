package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventSubscribed Event = "subscribed"
	EventProctor    Event = "proctor_event"
	EventPong       Event = "pong"
)

// SubscribedResponse confirms the stream is attached to a session.
type SubscribedResponse struct {
	Event       Event  `json:"event"`
	SessionUUID string `json:"session_uuid"`
}

// ProctorEventResponse forwards one proctor event to a live monitor.
// Payload is the stored event exactly as it was persisted.
type ProctorEventResponse struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
