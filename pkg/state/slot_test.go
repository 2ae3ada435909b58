package state_test

import (
	"testing"

	"github.com/aretw0/voicelink/internal/testutils"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/stretchr/testify/assert"
)

func TestSlot_ReplaceWithSelfIsNoop(t *testing.T) {
	journal := &testutils.Journal{}
	a := testutils.NewProbe("a", journal)
	slot := state.NewSlot(a)

	slot.ChangeState(domain.Replace(a))
	slot.ChangeState(domain.Stay())

	assert.Same(t, a, slot.Current())
	assert.Empty(t, journal.Entries)
}

func TestSlot_LeaveBeforeEnter(t *testing.T) {
	journal := &testutils.Journal{}
	a := testutils.NewProbe("a", journal)
	b := testutils.NewProbe("b", journal)
	slot := state.NewSlot(a)

	slot.ChangeState(domain.Replace(b))

	assert.Same(t, b, slot.Current())
	assert.Equal(t, []string{"a:leave", "b:enter"}, journal.Entries)
	assert.Equal(t, 1, a.Leaves)
	assert.Equal(t, 1, b.Enters)
}

func TestSlot_ReplaceNilStays(t *testing.T) {
	a := testutils.NewProbe("a", nil)
	slot := state.NewSlot(a)

	slot.ChangeState(domain.Replace(nil))

	assert.Same(t, a, slot.Current())
	assert.Zero(t, a.Leaves)
}

func TestSlot_NilInitialPanics(t *testing.T) {
	assert.Panics(t, func() { state.NewSlot(nil) })
}

func TestSlot_StepAppliesTransition(t *testing.T) {
	journal := &testutils.Journal{}
	b := testutils.NewProbe("b", journal)
	a := testutils.NewProbe("a", journal)
	a.OnStep = func() domain.Transition { return domain.Replace(b) }
	slot := state.NewSlot(a)

	slot.Step()
	slot.Step()

	assert.Same(t, b, slot.Current())
	assert.Equal(t, []string{"a:step", "a:leave", "b:enter", "b:step"}, journal.Entries)
}

func TestSlot_HandleAppliesTransition(t *testing.T) {
	b := testutils.NewProbe("b", nil)
	a := testutils.NewProbe("a", nil)
	a.OnHandle = func(cmd domain.Command) domain.Transition {
		if cmd.Name() == "go" {
			return domain.Replace(b)
		}
		return domain.Stay()
	}
	slot := state.NewSlot(a)

	slot.Handle(domain.NewCommand("wait", nil))
	assert.Same(t, a, slot.Current())

	slot.Handle(domain.NewCommand("go", nil))
	assert.Same(t, b, slot.Current())
}

func TestSlot_HooksFollowTransitions(t *testing.T) {
	var entered, left []string
	hooks := &domain.LifecycleHooks{
		OnEnter: func(e *domain.StateEvent) { entered = append(entered, e.State) },
		OnLeave: func(e *domain.StateEvent) { left = append(left, e.State) },
	}

	inner := testutils.NewProbe("inner", nil)
	next := testutils.NewProbe("next", nil)
	inner.OnStep = func() domain.Transition { return domain.Replace(next) }
	composite := state.NewComposite(func() []domain.Behavior {
		return []domain.Behavior{inner}
	})
	root := testutils.NewProbe("root", nil)
	root.OnStep = func() domain.Transition { return domain.Replace(composite) }

	slot := state.NewSlot(root)
	slot.Bind(hooks)

	slot.Step() // root -> composite
	slot.Step() // inner -> next, observed through the nested slot

	assert.Equal(t, []string{"root", "inner"}, left)
	assert.Equal(t, []string{"inner", "composite", "next"}, entered)
}
