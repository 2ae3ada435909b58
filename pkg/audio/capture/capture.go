// Package capture streams microphone audio to the server.
//
// Capture waits for the server to announce the capture websocket path, opens a
// second connection lifecycle to it and, while connected, either captures PCM
// from a Source or stays muted. The mute flag is tracked from the moment the
// leaf is built, so a mute received while still waiting or connecting is
// honored once the capture connection comes up.
package capture

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/transport"
)

const (
	// DefaultSampleRate is the capture sample rate announced to the server.
	DefaultSampleRate = 16000
	// DefaultBufferSamples is the number of 16-bit samples per binary frame.
	DefaultBufferSamples = 256
)

// Source produces 16-bit PCM samples.
type Source interface {
	// Start opens the device.
	Start() error
	// Read copies available bytes into p without blocking. It returns 0 when
	// nothing is buffered.
	Read(p []byte) (int, error)
	// Stop releases the device.
	Stop() error
}

// Config configures the capture leaf.
type Config struct {
	// Server is the host and port of the capture websocket. Its path is
	// replaced by the announced one.
	Server        connection.Endpoint
	SampleRate    int
	BufferSamples int
	Connection    connection.Options
	Logger        *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c Config) bufferBytes() int {
	n := c.BufferSamples
	if n <= 0 {
		n = DefaultBufferSamples
	}
	return n * 2
}

// URLPath appends the capture parameters to the announced path.
func (c Config) URLPath(path string) string {
	rate := c.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return fmt.Sprintf("%s?sample_rate=%d", path, rate)
}

// Context is the state shared by every behavior of one capture leaf.
type Context struct {
	mu    sync.Mutex
	muted bool

	t      transport.Transport
	source Source
	cfg    Config
	logger *slog.Logger
}

// Muted reports whether capture is muted.
func (c *Context) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetMuted sets the mute flag.
func (c *Context) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

// Accept tracks mute commands.
func (c *Context) Accept(cmd domain.Command) {
	switch cmd.Name() {
	case protocol.TypeMute:
		c.SetMuted(true)
	case protocol.TypeUnmute:
		c.SetMuted(false)
	}
}

// Waiting waits for the capture websocket address.
type Waiting struct {
	ctx *Context
}

var _ domain.Behavior = (*Waiting)(nil)

// NewWaiting creates a capture leaf sending audio from source over t.
// The leaf owns t.
func NewWaiting(t transport.Transport, source Source, cfg Config) *Waiting {
	return &Waiting{ctx: &Context{
		t:      t,
		source: source,
		cfg:    cfg,
		logger: cfg.logger(),
	}}
}

// Context returns the shared capture state.
func (w *Waiting) Context() *Context {
	return w.ctx
}

func (w *Waiting) Enter() {}
func (w *Waiting) Leave() {}

func (w *Waiting) Step() domain.Transition {
	return domain.Stay()
}

func (w *Waiting) Handle(cmd domain.Command) domain.Transition {
	if cmd.Name() != protocol.TypeSTTReady {
		w.ctx.Accept(cmd)
		return domain.Stay()
	}
	path, ok := cmd.String("path")
	if !ok || path == "" {
		w.ctx.logger.Warn("capture address without path", "command", cmd.Name())
		return domain.Stay()
	}
	return domain.Replace(NewConnecting(w.ctx, w.ctx.cfg.URLPath(path)))
}

func (w *Waiting) Describe() string {
	return "waiting for audio capture websocket address"
}

// NewConnecting creates the capture connection lifecycle at path.
func NewConnecting(ctx *Context, path string) *lifecycle.Connecting {
	ep := ctx.cfg.Server.WithPath(path)
	return connection.NewConnecting(ctx.t, ep, func(reconnect domain.Behavior, t transport.Transport) domain.Behavior {
		return NewConnected(ctx, reconnect)
	}, ctx.cfg.Connection,
		lifecycle.WithCommandHandler(ctx.Accept),
		lifecycle.WithDescription("connecting to audio capture websocket"))
}

// NewConnected creates the connected capture phase. Its single nested
// behavior is Capturing or Muted, depending on the mute flag.
func NewConnected(ctx *Context, reconnect domain.Behavior) *lifecycle.Connected {
	return connection.NewConnected(reconnect, ctx.t, func() []domain.Behavior {
		if ctx.Muted() {
			return []domain.Behavior{NewMuted(ctx)}
		}
		return []domain.Behavior{NewCapturing(ctx)}
	}, connection.IgnoreMessages(ctx.cfg.Connection), ctx.cfg.Connection,
		lifecycle.WithConnectedDescription("audio capture websocket connected"))
}

// Capturing reads from the source and sends one binary frame each time the
// send buffer fills.
type Capturing struct {
	ctx    *Context
	buf    []byte
	filled int
}

var _ domain.Behavior = (*Capturing)(nil)

func NewCapturing(ctx *Context) *Capturing {
	return &Capturing{ctx: ctx}
}

func (c *Capturing) Enter() {
	c.buf = make([]byte, c.ctx.cfg.bufferBytes())
	c.filled = 0
	if err := c.ctx.source.Start(); err != nil {
		c.ctx.logger.Error("failed to start audio source", "err", err)
	}
}

func (c *Capturing) Leave() {
	if err := c.ctx.source.Stop(); err != nil {
		c.ctx.logger.Warn("failed to stop audio source", "err", err)
	}
}

func (c *Capturing) Step() domain.Transition {
	n, err := c.ctx.source.Read(c.buf[c.filled:])
	if err != nil {
		c.ctx.logger.Warn("audio source read failed", "err", err)
	}
	c.filled += n
	if c.filled >= len(c.buf) {
		frame := make([]byte, len(c.buf))
		copy(frame, c.buf)
		if err := c.ctx.t.Send(transport.Binary(frame)); err != nil {
			c.ctx.logger.Warn("failed to send audio frame", "err", err)
		}
		c.filled = 0
	}
	return domain.Stay()
}

func (c *Capturing) Handle(cmd domain.Command) domain.Transition {
	if cmd.Name() == protocol.TypeMute {
		c.ctx.SetMuted(true)
		return domain.Replace(NewMuted(c.ctx))
	}
	return domain.Stay()
}

func (c *Capturing) Describe() string {
	return "capturing audio"
}

// Muted waits for unmute.
type Muted struct {
	ctx *Context
}

var _ domain.Behavior = (*Muted)(nil)

func NewMuted(ctx *Context) *Muted {
	return &Muted{ctx: ctx}
}

func (m *Muted) Enter() {}
func (m *Muted) Leave() {}

func (m *Muted) Step() domain.Transition {
	return domain.Stay()
}

func (m *Muted) Handle(cmd domain.Command) domain.Transition {
	if cmd.Name() == protocol.TypeUnmute {
		m.ctx.SetMuted(false)
		return domain.Replace(NewCapturing(m.ctx))
	}
	return domain.Stay()
}

func (m *Muted) Describe() string {
	return "audio capture muted"
}
