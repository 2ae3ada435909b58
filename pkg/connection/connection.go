// Package connection binds the connecting/connected lifecycle to a message
// transport: the connecting phase retries Connect on a fixed interval and the
// connected phase polls the transport, pings it on entry and hands control
// back to the connecting phase when the transport dies.
package connection

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport"
)

// Endpoint is the address a transport connects to.
type Endpoint struct {
	Host string
	Port int
	Path string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d%s", e.Host, e.Port, e.Path)
}

// WithPath returns a copy of e pointing at path.
func (e Endpoint) WithPath(path string) Endpoint {
	e.Path = path
	return e
}

// Factory builds the connected phase for a transport. reconnect is the
// connecting behavior that established the transport.
type Factory func(reconnect domain.Behavior, t transport.Transport) domain.Behavior

// Options configures both phases.
type Options struct {
	Policy lifecycle.Policy
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// link adapts a transport to lifecycle.Session.
type link struct {
	t         transport.Transport
	ep        Endpoint
	onMessage MessageHandler
}

var _ lifecycle.Session = (*link)(nil)

func (l *link) Reset() { l.t.Close() }

func (l *link) Establish() bool {
	return l.t.Connect(l.ep.Host, l.ep.Port, l.ep.Path)
}

// Alive polls the transport, delivering pending frames, before checking it.
func (l *link) Alive() bool {
	l.t.Poll()
	return l.t.Available()
}

func (l *link) Describe() string {
	if l.ep.Path == "" {
		return "websocket"
	}
	return "websocket at " + l.ep.Path
}

// Open registers the message callback and pings the peer. Revoking also
// closes the transport: a connected phase that is left owns no connection.
func (l *link) Open(deliver func(domain.Command)) func() {
	revoke := l.t.OnMessage(func(msg transport.Message) {
		if l.onMessage != nil {
			l.onMessage(msg, deliver)
		}
	})
	l.t.Ping()
	return func() {
		revoke()
		l.t.Close()
	}
}

// NewConnecting creates the connecting phase for t at ep. extra options are
// applied after the defaults.
func NewConnecting(t transport.Transport, ep Endpoint, build Factory, opts Options, extra ...lifecycle.ConnectingOption) *lifecycle.Connecting {
	l := &link{t: t, ep: ep}
	return lifecycle.NewConnecting(l, func(reconnect domain.Behavior) domain.Behavior {
		return build(reconnect, t)
	}, opts.Policy, append([]lifecycle.ConnectingOption{
		lifecycle.WithLogger(opts.logger().With("path", ep.Path)),
		lifecycle.WithDescription("connecting to " + l.Describe()),
	}, extra...)...)
}

// MessageHandler receives raw inbound frames in the connected phase.
// deliver routes a command to the phase's nested behaviors.
type MessageHandler func(msg transport.Message, deliver func(domain.Command))

// NewConnected creates a connected phase that passes every raw inbound frame
// to onMessage. extra options are applied after the defaults.
func NewConnected(reconnect domain.Behavior, t transport.Transport, nested state.Factory, onMessage MessageHandler, opts Options, extra ...lifecycle.ConnectedOption) *lifecycle.Connected {
	return lifecycle.NewConnected(&link{t: t, onMessage: onMessage}, lifecycle.ReconnectTo(reconnect), nested, opts.Policy,
		append([]lifecycle.ConnectedOption{
			lifecycle.WithConnectedLogger(opts.logger()),
			lifecycle.WithConnectedDescription("connected to websocket"),
		}, extra...)...)
}
