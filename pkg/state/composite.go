package state

import (
	"github.com/aretw0/voicelink/pkg/domain"
)

// Factory builds the initial behaviors of a composite.
type Factory func() []domain.Behavior

// Composite is a behavior that owns a fixed, ordered list of slots.
//
// The slots are created once, at construction; only the behavior inside each
// slot changes over time. Every call is forwarded to all slots in declared
// order, and one slot ignoring a command never prevents delivery to the next.
//
// Composite is meant to be embedded. Embedders overriding Enter, Leave or
// Step call the Composite method to keep the fan-out.
type Composite struct {
	slots []*Slot
	hooks *domain.LifecycleHooks
}

var _ domain.Behavior = (*Composite)(nil)
var _ domain.Parent = (*Composite)(nil)

// NewComposite builds the nested slots from factory.
func NewComposite(factory Factory) *Composite {
	var nested []domain.Behavior
	if factory != nil {
		nested = factory()
	}
	slots := make([]*Slot, 0, len(nested))
	for _, b := range nested {
		slots = append(slots, NewSlot(b))
	}
	return &Composite{slots: slots}
}

// Enter enters every nested behavior.
func (c *Composite) Enter() {
	for _, s := range c.slots {
		s.current.Enter()
		c.hooks.Enter(s.current)
	}
}

// Leave leaves every nested behavior.
func (c *Composite) Leave() {
	for _, s := range c.slots {
		s.current.Leave()
		c.hooks.Leave(s.current)
	}
}

// Step steps every nested slot. A composite never replaces itself.
func (c *Composite) Step() domain.Transition {
	for _, s := range c.slots {
		s.Step()
	}
	return domain.Stay()
}

// Handle routes cmd to every nested slot.
func (c *Composite) Handle(cmd domain.Command) domain.Transition {
	for _, s := range c.slots {
		s.Handle(cmd)
	}
	return domain.Stay()
}

func (c *Composite) Describe() string {
	return "composite"
}

// Nested returns the active behavior of each slot, in declared order.
func (c *Composite) Nested() []domain.Behavior {
	out := make([]domain.Behavior, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.current
	}
	return out
}

// Len returns the number of nested slots.
func (c *Composite) Len() int {
	return len(c.slots)
}

// Hooks returns the hooks bound to this composite, or nil.
func (c *Composite) Hooks() *domain.LifecycleHooks {
	return c.hooks
}

func (c *Composite) bindHooks(hooks *domain.LifecycleHooks) {
	c.hooks = hooks
	for _, s := range c.slots {
		s.Bind(hooks)
	}
}
