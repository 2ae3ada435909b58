package state

import (
	"github.com/aretw0/voicelink/pkg/domain"
)

// Slot is the exclusive owner of exactly one active behavior.
type Slot struct {
	current domain.Behavior
	hooks   *domain.LifecycleHooks
}

// NewSlot creates a slot holding initial. The slot does not call Enter on
// initial; the owner of the slot decides when the behavior becomes active.
func NewSlot(initial domain.Behavior) *Slot {
	if initial == nil {
		panic("state: slot requires an initial behavior")
	}
	return &Slot{current: initial}
}

// Current returns the active behavior.
func (s *Slot) Current() domain.Behavior {
	return s.current
}

// Describe describes the active behavior.
func (s *Slot) Describe() string {
	return s.current.Describe()
}

// Bind attaches lifecycle hooks to the slot and to every slot nested in its
// active behavior. Behaviors entered later inherit the same hooks.
func (s *Slot) Bind(hooks *domain.LifecycleHooks) {
	s.hooks = hooks
	bind(s.current, hooks)
}

// ChangeState applies t. Replacing the active behavior with itself is a
// no-op; otherwise Leave is called on the outgoing behavior before Enter is
// called on the incoming one.
func (s *Slot) ChangeState(t domain.Transition) {
	if t.IsStay(s.current) {
		return
	}
	next, _ := t.Next()

	prev := s.current
	prev.Leave()
	s.hooks.Leave(prev)

	s.current = next
	bind(next, s.hooks)
	next.Enter()
	s.hooks.Enter(next)
}

// Step steps the active behavior and applies the resulting transition.
func (s *Slot) Step() {
	s.ChangeState(s.current.Step())
}

// Handle routes cmd to the active behavior and applies the resulting transition.
func (s *Slot) Handle(cmd domain.Command) {
	s.ChangeState(s.current.Handle(cmd))
}

type binder interface {
	bindHooks(hooks *domain.LifecycleHooks)
}

func bind(b domain.Behavior, hooks *domain.LifecycleHooks) {
	if hooks == nil {
		return
	}
	if c, ok := b.(binder); ok {
		c.bindHooks(hooks)
	}
}
