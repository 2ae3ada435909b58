package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEnter   EventType = "enter"
	EventLeave   EventType = "leave"
	EventCommand EventType = "command"
	EventDrop    EventType = "drop"
)

// StateEvent represents entry into or exit from a behavior.
type StateEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	State     string    `json:"state"`
}

// CommandEvent represents an inbound command or a rejected inbound message.
type CommandEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Command   string    `json:"command,omitempty"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnEnter   func(*StateEvent)
	OnLeave   func(*StateEvent)
	OnCommand func(*CommandEvent)
	OnDrop    func(*CommandEvent)
}

// Enter fires OnEnter for b.
func (h *LifecycleHooks) Enter(b Behavior) {
	if h == nil || h.OnEnter == nil {
		return
	}
	h.OnEnter(&StateEvent{Timestamp: time.Now(), Type: EventEnter, State: b.Describe()})
}

// Leave fires OnLeave for b.
func (h *LifecycleHooks) Leave(b Behavior) {
	if h == nil || h.OnLeave == nil {
		return
	}
	h.OnLeave(&StateEvent{Timestamp: time.Now(), Type: EventLeave, State: b.Describe()})
}

// Command fires OnCommand for cmd.
func (h *LifecycleHooks) Command(cmd Command) {
	if h == nil || h.OnCommand == nil {
		return
	}
	h.OnCommand(&CommandEvent{Timestamp: time.Now(), Type: EventCommand, Command: cmd.Name()})
}

// Drop fires OnDrop for a rejected inbound message.
func (h *LifecycleHooks) Drop(err error) {
	if h == nil || h.OnDrop == nil {
		return
	}
	h.OnDrop(&CommandEvent{Timestamp: time.Now(), Type: EventDrop, Err: err})
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEnter:   chain(h.OnEnter, other.OnEnter),
		OnLeave:   chain(h.OnLeave, other.OnLeave),
		OnCommand: chain(h.OnCommand, other.OnCommand),
		OnDrop:    chain(h.OnDrop, other.OnDrop),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
