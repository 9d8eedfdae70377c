package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRegister EventType = "register"
	EventFallback EventType = "fallback"
	EventFailure  EventType = "failure"
)

// ScriptEvent describes one step of a script call.
type ScriptEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Script    string    `json:"script"`
	Hash      string    `json:"hash,omitempty"`
	Err       error     `json:"-"`
}

// Hooks defines callbacks for runner observability.
// Any of them may be nil.
type Hooks struct {
	OnRegister func(context.Context, *ScriptEvent)
	OnFallback func(context.Context, *ScriptEvent)
	OnFailure  func(context.Context, *ScriptEvent)
}

// Emit dispatches the event to the matching hook, if set.
func (h Hooks) Emit(ctx context.Context, e *ScriptEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	var fn func(context.Context, *ScriptEvent)
	switch e.Type {
	case EventRegister:
		fn = h.OnRegister
	case EventFallback:
		fn = h.OnFallback
	case EventFailure:
		fn = h.OnFailure
	}
	if fn != nil {
		fn(ctx, e)
	}
}
