package voicelink

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/state"
)

// DefaultTick is the pause between two steps of the behavior tree.
const DefaultTick = 10 * time.Millisecond

// Engine drives the root slot of a device.
//
// Step and Dispatch are serialized; they are normally called from Run's
// goroutine only. Snapshot is safe to call from any goroutine.
type Engine struct {
	slot   *state.Slot
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	tick   time.Duration

	mu       sync.Mutex
	started  bool
	stopped  bool
	snapshot atomic.Pointer[state.Node]
	steps    atomic.Uint64
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTick sets the pause between steps in Run.
func WithTick(d time.Duration) Option {
	return func(e *Engine) {
		e.tick = d
	}
}

// New creates an engine whose root slot holds root, usually the network
// attach behavior. The root is not entered until Start.
func New(root domain.Behavior, opts ...Option) *Engine {
	e := &Engine{
		slot:   state.NewSlot(root),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tick:   DefaultTick,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.publish()
	return e
}

// Start binds the hooks and enters the root behavior. Calling it again is a
// no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.slot.Bind(&e.hooks)
	root := e.slot.Current()
	e.logger.Info("starting", "state", root.Describe())
	root.Enter()
	e.hooks.Enter(root)
	e.publish()
}

// Step advances the behavior tree once.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running() {
		return
	}
	e.slot.Step()
	e.steps.Add(1)
	e.publish()
}

// Dispatch routes cmd to the root behavior and reports it to OnCommand.
func (e *Engine) Dispatch(cmd domain.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running() {
		return
	}
	e.hooks.Command(cmd)
	e.slot.Handle(cmd)
	e.publish()
}

// Stop leaves the whole behavior tree, releasing every connection it owns.
// The engine cannot be restarted.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running() {
		e.stopped = true
		return
	}
	e.stopped = true
	root := e.slot.Current()
	root.Leave()
	e.hooks.Leave(root)
	e.logger.Info("stopped", "state", root.Describe())
	e.publish()
}

func (e *Engine) running() bool {
	return e.started && !e.stopped
}

// Current returns the root behavior. It must only be used from the goroutine
// driving the engine.
func (e *Engine) Current() domain.Behavior {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slot.Current()
}

// Snapshot returns the behavior tree as of the last step.
func (e *Engine) Snapshot() state.Node {
	return *e.snapshot.Load()
}

// Steps returns how many steps were taken.
func (e *Engine) Steps() uint64 {
	return e.steps.Load()
}

func (e *Engine) publish() {
	n := state.Snapshot(e.slot.Current())
	e.snapshot.Store(&n)
}

// Run starts the engine and steps it once per tick until ctx is done, then
// stops it. The lifecycle's retry and reconnect delays block inside Step.
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	defer e.Stop()

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Step()
		}
	}
}
