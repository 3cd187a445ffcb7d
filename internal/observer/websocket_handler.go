package observer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development; callers embedding this
		// handler in production should wrap it with their own
		// origin check.
		return true
	},
}

// WebSocketHandler upgrades HTTP requests to WebSocket connections
// subscribed to run events.
type WebSocketHandler struct {
	hub *WebSocketHub
	log *slog.Logger
}

// NewWebSocketHandler creates a handler serving hub's connections.
func NewWebSocketHandler(hub *WebSocketHub, log *slog.Logger) *WebSocketHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebSocketHandler{hub: hub, log: log}
}

// ServeHTTP upgrades the connection and registers a client scoped to
// the optional run_id query parameter.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("failed to upgrade websocket connection", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewWebSocketClient(clientID, conn, h.hub, runID)

	h.hub.Register(client)

	welcome := map[string]any{
		"type":      "control",
		"message":   "connected",
		"client_id": clientID,
		"run_id":    runID,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if data, err := json.Marshal(welcome); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}

	go client.WritePump()
	go client.ReadPump()

	h.log.Info("websocket connection established", "client_id", clientID, "run_id", runID, "remote_addr", r.RemoteAddr)
}

// HandleHealthCheck reports hub connection counts.
func (h *WebSocketHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	status := map[string]any{
		"status":            "healthy",
		"connected_clients": h.hub.ClientCount(),
		"timestamp":         time.Now().Format(time.RFC3339),
	}

	if data, err := json.Marshal(status); err == nil {
		w.Write(data)
	}
}
