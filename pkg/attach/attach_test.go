package attach_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/voicelink/internal/testutils"
	"github.com/aretw0/voicelink/pkg/attach"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttaching_BeginOnceThenPoll(t *testing.T) {
	net := &attach.Toggle{Name: "lab"}
	var built []*testutils.Probe
	factory := func() []domain.Behavior {
		p := testutils.NewProbe("app", nil)
		built = append(built, p)
		return []domain.Behavior{p}
	}

	attaching := attach.NewAttaching(net, factory, attach.Options{})
	slot := state.NewSlot(attaching)
	attaching.Enter()
	assert.Equal(t, 1, net.Begins())
	assert.Equal(t, "connecting to network (lab)", attaching.Describe())

	slot.Step()
	slot.Step()
	assert.Same(t, attaching, slot.Current())
	assert.Equal(t, 1, net.Begins(), "polling does not re-issue the request")
	assert.Empty(t, built)

	net.Set(attach.StatusAttached)
	slot.Step()
	attached, ok := slot.Current().(*lifecycle.Connected)
	require.True(t, ok)
	assert.Equal(t, "attached to network (lab)", attached.Describe())
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].Enters)

	slot.Step()
	assert.Equal(t, 1, built[0].Steps)
}

func TestAttached_LossBuildsFreshAttaching(t *testing.T) {
	net := &attach.Toggle{}
	var built []*testutils.Probe
	factory := func() []domain.Behavior {
		p := testutils.NewProbe("app", nil)
		built = append(built, p)
		return []domain.Behavior{p}
	}
	sleeps := &testutils.Sleeps{}
	opts := attach.Options{Policy: lifecycle.Policy{Sleep: sleeps.Sleep}}

	attaching := attach.NewAttaching(net, factory, opts)
	slot := state.NewSlot(attaching)
	attaching.Enter()
	net.Set(attach.StatusAttached)
	slot.Step()
	require.Len(t, built, 1)

	net.Set(attach.StatusFailed)
	slot.Step()

	again, ok := slot.Current().(*lifecycle.Connecting)
	require.True(t, ok)
	assert.NotSame(t, attaching, again)
	assert.Equal(t, 2, net.Begins())
	assert.Equal(t, 1, built[0].Leaves)
	assert.Empty(t, sleeps.Durations, "no delay after losing the network")

	slot.Step()
	assert.Zero(t, built[0].Steps, "discarded application is never stepped")

	net.Set(attach.StatusAttached)
	slot.Step()
	require.Len(t, built, 2, "application rebuilt from the same factory")
	assert.Equal(t, 1, built[1].Enters)
}

func TestAttaching_NeverWaitsBetweenPolls(t *testing.T) {
	net := &attach.Toggle{}
	sleeps := &testutils.Sleeps{}
	opts := attach.Options{Policy: lifecycle.Policy{
		RetryInterval: 500 * time.Millisecond,
		LossDelay:     10 * time.Second,
		Sleep:         sleeps.Sleep,
	}}

	attaching := attach.NewAttaching(net, func() []domain.Behavior { return nil }, opts)
	slot := state.NewSlot(attaching)
	attaching.Enter()
	for i := 0; i < 3; i++ {
		slot.Step()
	}
	assert.Same(t, attaching, slot.Current())
	assert.Equal(t, attach.StatusAttaching, net.Status())

	net.Set(attach.StatusFailed)
	slot.Step()
	assert.Same(t, attaching, slot.Current())

	net.Set(attach.StatusAttached)
	slot.Step()
	_, ok := slot.Current().(*lifecycle.Connected)
	require.True(t, ok)
	assert.Empty(t, sleeps.Durations, "status polls must not block the tick")
}

func TestStatic_AlwaysAttached(t *testing.T) {
	leaf := testutils.NewProbe("app", nil)
	attaching := attach.NewAttaching(attach.Static{}, func() []domain.Behavior {
		return []domain.Behavior{leaf}
	}, attach.Options{})
	slot := state.NewSlot(attaching)
	attaching.Enter()
	slot.Step()

	assert.Equal(t, "attached to network (static)", slot.Describe())
	assert.Equal(t, 1, leaf.Enters)
}

func TestInterface_Status(t *testing.T) {
	ifaces := []attach.Iface{
		{Name: "lo", Up: true, Loopback: true, Unicast: true},
		{Name: "eth0", Up: false, Unicast: true},
		{Name: "wlan0", Up: true, Unicast: false},
	}
	source := func() ([]attach.Iface, error) { return ifaces, nil }

	t.Run("idle before begin", func(t *testing.T) {
		i := attach.NewInterface("", attach.WithInterfaceSource(source))
		assert.Equal(t, attach.StatusIdle, i.Status())
	})

	t.Run("any ignores loopback", func(t *testing.T) {
		i := attach.NewInterface("", attach.WithInterfaceSource(source))
		i.Begin()
		assert.Equal(t, attach.StatusAttaching, i.Status())
		assert.Equal(t, "any interface", i.Describe())

		ifaces[2].Unicast = true
		defer func() { ifaces[2].Unicast = false }()
		assert.Equal(t, attach.StatusAttached, i.Status())
	})

	t.Run("named", func(t *testing.T) {
		i := attach.NewInterface("lo", attach.WithInterfaceSource(source))
		i.Begin()
		assert.Equal(t, attach.StatusAttached, i.Status())

		eth := attach.NewInterface("eth0", attach.WithInterfaceSource(source))
		eth.Begin()
		assert.Equal(t, attach.StatusAttaching, eth.Status())
	})

	t.Run("missing interface fails", func(t *testing.T) {
		i := attach.NewInterface("wwan0", attach.WithInterfaceSource(source))
		i.Begin()
		assert.Equal(t, attach.StatusFailed, i.Status())
	})

	t.Run("listing error fails", func(t *testing.T) {
		i := attach.NewInterface("", attach.WithInterfaceSource(func() ([]attach.Iface, error) {
			return nil, errors.New("boom")
		}))
		i.Begin()
		assert.Equal(t, attach.StatusFailed, i.Status())
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "attached", attach.StatusAttached.String())
	assert.Equal(t, "status(9)", attach.Status(9).String())
}
