// Package attach brings the device onto the network before anything that
// needs connectivity runs.
//
// It reuses the connecting/connected shape of package lifecycle: Attaching
// issues the attach request on entry and polls the driver status once per
// step without waiting between polls; Attached runs the nested behaviors and, once the driver reports the
// network gone, replaces itself with a fresh Attaching built from the same
// nested factory.
package attach

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/state"
)

// Status is the driver-reported attachment status.
type Status int

const (
	StatusIdle Status = iota
	StatusAttaching
	StatusAttached
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAttaching:
		return "attaching"
	case StatusAttached:
		return "attached"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Attacher drives the network hardware.
type Attacher interface {
	// Begin issues an attach request. It does not wait for the outcome.
	Begin()
	// Status reports the current attachment status.
	Status() Status
	// Describe names the network for descriptions and logs.
	Describe() string
}

// Options configures the attach pair.
type Options struct {
	// Policy is shared with the connection phases. Attaching never waits, so
	// RetryInterval and LossDelay are ignored.
	Policy lifecycle.Policy
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type link struct {
	a Attacher
}

func (l link) Reset()           { l.a.Begin() }
func (l link) Establish() bool  { return l.a.Status() == StatusAttached }
func (l link) Alive() bool      { return l.a.Status() == StatusAttached }
func (l link) Describe() string { return "network (" + l.a.Describe() + ")" }

func (o Options) policy() lifecycle.Policy {
	p := o.Policy
	p.RetryInterval = 0
	p.LossDelay = 0
	return p
}

// NewAttaching creates the attaching phase for a.
func NewAttaching(a Attacher, nested state.Factory, opts Options) *lifecycle.Connecting {
	l := link{a: a}
	logger := opts.logger().With("network", a.Describe())
	return lifecycle.NewConnecting(l, func(domain.Behavior) domain.Behavior {
		return NewAttached(a, nested, opts)
	}, opts.policy(), lifecycle.WithLogger(logger))
}

// NewAttached creates the attached phase for a. Losing the network never
// waits: the replacement Attaching re-issues the attach request at once.
func NewAttached(a Attacher, nested state.Factory, opts Options) *lifecycle.Connected {
	l := link{a: a}
	return lifecycle.NewConnected(l, func() domain.Behavior {
		return NewAttaching(a, nested, opts)
	}, nested, opts.policy(),
		lifecycle.WithConnectedLogger(opts.logger().With("network", a.Describe())),
		lifecycle.WithConnectedDescription("attached to "+l.Describe()))
}

// Static is an Attacher for hosts whose network is managed elsewhere. It is
// always attached.
type Static struct {
	Name string
}

func (s Static) Begin() {}

func (s Static) Status() Status { return StatusAttached }

func (s Static) Describe() string {
	if s.Name == "" {
		return "static"
	}
	return s.Name
}

// Toggle is a manually driven Attacher used by simulations and tests.
type Toggle struct {
	Name   string
	status Status
	begins int
	// OnBegin, when set, decides the status right after each Begin.
	OnBegin func(n int) Status
}

func (t *Toggle) Begin() {
	t.begins++
	t.status = StatusAttaching
	if t.OnBegin != nil {
		t.status = t.OnBegin(t.begins)
	}
}

func (t *Toggle) Status() Status { return t.status }

// Set forces the status.
func (t *Toggle) Set(s Status) { t.status = s }

// Begins returns how many attach requests were issued.
func (t *Toggle) Begins() int { return t.begins }

func (t *Toggle) Describe() string {
	if t.Name == "" {
		return "toggle"
	}
	return t.Name
}
