package observer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nodeflow/nodeflow/pkg/engine"
)

func TestWebSocketHub_BroadcastRouting(t *testing.T) {
	hub := NewWebSocketHub(testLogger())

	scoped := &WebSocketClient{ID: "scoped", send: make(chan []byte, 4), hub: hub, runID: "run-1", subscriptions: make(map[string]bool)}
	unscoped := &WebSocketClient{ID: "unscoped", send: make(chan []byte, 4), hub: hub, subscriptions: make(map[string]bool)}
	otherRun := &WebSocketClient{ID: "other-run", send: make(chan []byte, 4), hub: hub, runID: "run-2", subscriptions: make(map[string]bool)}

	hub.Register(scoped)
	hub.Register(unscoped)
	hub.Register(otherRun)

	// Give the dispatch goroutine a moment to process the registrations.
	time.Sleep(10 * time.Millisecond)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 connected clients, got %d", got)
	}

	hub.BroadcastToRun("run-1", []byte("hello"))
	time.Sleep(10 * time.Millisecond)

	select {
	case msg := <-scoped.send:
		if string(msg) != "hello" {
			t.Errorf("scoped client got %q, want %q", msg, "hello")
		}
	default:
		t.Error("scoped client (run-1) should have received the broadcast")
	}

	select {
	case msg := <-unscoped.send:
		if string(msg) != "hello" {
			t.Errorf("unscoped client got %q, want %q", msg, "hello")
		}
	default:
		t.Error("unscoped client should receive every run's broadcast")
	}

	select {
	case <-otherRun.send:
		t.Error("client scoped to a different run should not have received the broadcast")
	default:
	}
}

func TestWebSocketClient_IsSubscribed(t *testing.T) {
	c := NewWebSocketClient("client-1", nil, nil, "")

	if !c.IsSubscribed(engine.EventTypeNodeStarted) {
		t.Error("a client with no subscriptions should receive every event type")
	}

	c.subscriptions[engine.EventTypeNodeCompleted] = true

	if c.IsSubscribed(engine.EventTypeNodeStarted) {
		t.Error("client should no longer receive unsubscribed event types")
	}
	if !c.IsSubscribed(engine.EventTypeNodeCompleted) {
		t.Error("client should receive its subscribed event type")
	}
}

func TestWebSocketObserver_OnEvent(t *testing.T) {
	hub := NewWebSocketHub(testLogger())
	client := &WebSocketClient{ID: "client-1", send: make(chan []byte, 4), hub: hub, runID: "run-1", subscriptions: make(map[string]bool)}
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	obs := NewWebSocketObserver(hub, WithWebSocketLogger(testLogger()))

	event := engine.ExecutionEvent{
		Type:       engine.EventTypeNodeFailed,
		RunID:      "run-1",
		WorkflowID: "wf-1",
		NodeID:     "node-1",
		Error:      errors.New("boom"),
		Timestamp:  time.Now(),
	}

	if err := obs.OnEvent(context.Background(), event); err != nil {
		t.Fatalf("OnEvent returned error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	select {
	case data := <-client.send:
		var msg WebSocketMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("failed to unmarshal broadcast message: %v", err)
		}
		if msg.Event == nil {
			t.Fatal("expected message to carry an event payload")
		}
		if msg.Event.EventType != engine.EventTypeNodeFailed {
			t.Errorf("expected event type %q, got %q", engine.EventTypeNodeFailed, msg.Event.EventType)
		}
		if msg.Event.Error != "boom" {
			t.Errorf("expected error %q, got %q", "boom", msg.Event.Error)
		}
	default:
		t.Error("expected client to receive the broadcast message")
	}
}

func TestWebSocketObserver_Name(t *testing.T) {
	obs := NewWebSocketObserver(nil)
	if obs.Name() != "websocket" {
		t.Errorf("expected name %q, got %q", "websocket", obs.Name())
	}
}
