package service

import (
	"context"
	"sync"
)

// Events published by the scene service.
const (
	EventSceneChanged    = "scene:changed"
	EventSceneSaved      = "scene:saved"
	EventSceneSaveFailed = "scene:save-failed"
	EventSceneDeleted    = "scene:deleted"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from the presentation host
// ─────────────────────────────────────────────────────────────

// EventEmitter pushes service events to whatever hosts the composer
// (the MCP server, a UI bridge). Services take this interface so they can
// be tested with a MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, oldest first.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
