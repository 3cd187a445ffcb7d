package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nodeflow/nodeflow/pkg/engine"
)

// WebSocketObserver broadcasts execution events to connected
// WebSocket clients, scoped by run ID.
type WebSocketObserver struct {
	name   string
	filter EventFilter
	log    *slog.Logger
	hub    *WebSocketHub
}

// WebSocketClient is one connected WebSocket subscriber.
type WebSocketClient struct {
	ID            string
	conn          *websocket.Conn
	send          chan []byte
	hub           *WebSocketHub
	runID         string // empty means "subscribed to every run"
	subscriptions map[string]bool
	mu            sync.RWMutex
}

// WebSocketHub tracks connected clients and routes broadcasts.
type WebSocketHub struct {
	clients    map[*WebSocketClient]bool
	broadcast  chan hubMessage
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	log        *slog.Logger
	mu         sync.RWMutex
}

type hubMessage struct {
	runID   string
	payload []byte
}

// WebSocketMessage is the envelope sent to clients.
type WebSocketMessage struct {
	Type      string         `json:"type"` // "event" or "control"
	Event     *EventPayload  `json:"event,omitempty"`
	Control   map[string]any `json:"control,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventPayload is the WebSocket-friendly rendering of engine.ExecutionEvent.
type EventPayload struct {
	EventType  string         `json:"event_type"`
	RunID      string         `json:"run_id"`
	WorkflowID string         `json:"workflow_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Status     string         `json:"status"`
	NodeID     string         `json:"node_id,omitempty"`
	NodeTitle  string         `json:"node_title,omitempty"`
	NodeType   string         `json:"node_type,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
	Output     map[string]any `json:"output,omitempty"`
	Paused     bool           `json:"is_downstream_of_pause,omitempty"`
}

// WebSocketObserverOption configures WebSocketObserver.
type WebSocketObserverOption func(*WebSocketObserver)

// WithWebSocketFilter restricts which events broadcast.
func WithWebSocketFilter(filter EventFilter) WebSocketObserverOption {
	return func(o *WebSocketObserver) {
		o.filter = filter
	}
}

// WithWebSocketLogger sets the observer's diagnostic logger.
func WithWebSocketLogger(l *slog.Logger) WebSocketObserverOption {
	return func(o *WebSocketObserver) {
		o.log = l
	}
}

// NewWebSocketHub creates a hub and starts its dispatch loop.
func NewWebSocketHub(log *slog.Logger) *WebSocketHub {
	if log == nil {
		log = slog.Default()
	}
	hub := &WebSocketHub{
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan hubMessage, 256),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		log:        log,
	}

	go hub.run()

	return hub
}

// NewWebSocketObserver creates an observer broadcasting through hub.
func NewWebSocketObserver(hub *WebSocketHub, opts ...WebSocketObserverOption) *WebSocketObserver {
	obs := &WebSocketObserver{
		name: "websocket",
		hub:  hub,
		log:  slog.Default(),
	}

	for _, opt := range opts {
		opt(obs)
	}

	return obs
}

// Name returns the observer's name.
func (o *WebSocketObserver) Name() string {
	return o.name
}

// Filter returns the event filter, if any.
func (o *WebSocketObserver) Filter() EventFilter {
	return o.filter
}

// OnEvent broadcasts event to every client subscribed to its run.
func (o *WebSocketObserver) OnEvent(ctx context.Context, event engine.ExecutionEvent) error {
	message := o.eventToMessage(event)

	data, err := json.Marshal(message)
	if err != nil {
		o.log.ErrorContext(ctx, "failed to marshal websocket message", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	o.hub.BroadcastToRun(event.RunID, data)

	return nil
}

func (o *WebSocketObserver) eventToMessage(event engine.ExecutionEvent) *WebSocketMessage {
	payload := &EventPayload{
		EventType:  event.Type,
		RunID:      event.RunID,
		WorkflowID: event.WorkflowID,
		Timestamp:  event.Timestamp,
		Status:     event.Status,
		NodeID:     event.NodeID,
		NodeTitle:  event.NodeTitle,
		NodeType:   event.NodeType,
		DurationMs: event.DurationMs,
		Paused:     event.IsDownstreamOfPause,
	}

	if outMap, ok := event.Output.(map[string]any); ok {
		payload.Output = outMap
	}

	if event.Error != nil {
		payload.Error = event.Error.Error()
	}

	return &WebSocketMessage{
		Type:      "event",
		Event:     payload,
		Timestamp: time.Now(),
	}
}

// GetHub returns the WebSocket hub (for HTTP handler wiring).
func (o *WebSocketObserver) GetHub() *WebSocketHub {
	return o.hub
}

// run is the hub's single-goroutine dispatch loop.
func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Info("websocket client connected", "client_id", client.ID, "run_id", client.runID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Info("websocket client disconnected", "client_id", client.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.runID != "" && client.runID != msg.runID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register registers a new WebSocket client.
func (h *WebSocketHub) Register(client *WebSocketClient) {
	h.register <- client
}

// Unregister unregisters a WebSocket client.
func (h *WebSocketHub) Unregister(client *WebSocketClient) {
	h.unregister <- client
}

// BroadcastToRun broadcasts message to clients watching runID, or
// watching every run.
func (h *WebSocketHub) BroadcastToRun(runID string, message []byte) {
	h.broadcast <- hubMessage{runID: runID, payload: message}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewWebSocketClient creates a new WebSocket client bound to hub,
// optionally scoped to a single run.
func NewWebSocketClient(id string, conn *websocket.Conn, hub *WebSocketHub, runID string) *WebSocketClient {
	return &WebSocketClient{
		ID:            id,
		conn:          conn,
		send:          make(chan []byte, 256),
		hub:           hub,
		runID:         runID,
		subscriptions: make(map[string]bool),
	}
}

// ReadPump reads control messages from the client until it disconnects.
func (c *WebSocketClient) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Error("websocket read error", "client_id", c.ID, "error", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump writes queued messages and periodic pings to the client.
func (c *WebSocketClient) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) handleMessage(message []byte) {
	var msg map[string]any
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	cmd, _ := msg["command"].(string)
	eventTypes, _ := msg["event_types"].([]any)

	switch cmd {
	case "subscribe":
		c.mu.Lock()
		for _, et := range eventTypes {
			if s, ok := et.(string); ok {
				c.subscriptions[s] = true
			}
		}
		c.mu.Unlock()

	case "unsubscribe":
		c.mu.Lock()
		for _, et := range eventTypes {
			if s, ok := et.(string); ok {
				delete(c.subscriptions, s)
			}
		}
		c.mu.Unlock()
	}
}

// IsSubscribed reports whether the client wants eventType. A client
// with no explicit subscriptions receives every event type.
func (c *WebSocketClient) IsSubscribed(eventType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.subscriptions) == 0 {
		return true
	}

	return c.subscriptions[eventType]
}
