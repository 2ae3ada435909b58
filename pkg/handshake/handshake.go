// Package handshake negotiates the application protocols over the control
// connection before any application behavior runs.
package handshake

import (
	"io"
	"log/slog"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport"
)

// Option configures the handshake behaviors.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Negotiating sends the negotiation request and waits for the agreement.
// There is no timeout: a lost connection discards the whole handshake.
type Negotiating struct {
	t      transport.Transport
	nested state.Factory
	opts   []Option
	logger *slog.Logger
}

var _ domain.Behavior = (*Negotiating)(nil)

// NewNegotiating creates the handshake for t. nested builds the application
// behaviors once the server agrees.
func NewNegotiating(t transport.Transport, nested state.Factory, opts ...Option) *Negotiating {
	return &Negotiating{
		t:      t,
		nested: nested,
		opts:   opts,
		logger: newOptions(opts).logger,
	}
}

// Enter sends the negotiation request exactly once.
func (n *Negotiating) Enter() {
	n.logger.Debug("entering state", "state", n.Describe())
	if err := n.t.Send(protocol.NegotiationRequest()); err != nil {
		n.logger.Warn("failed to send negotiation request", "err", err)
	}
}

func (n *Negotiating) Leave() {
	n.logger.Debug("leaving state", "state", n.Describe())
}

func (n *Negotiating) Step() domain.Transition {
	return domain.Stay()
}

// Handle completes the handshake on negotiate/agree. Anything else is
// unexpected before the protocols are agreed.
func (n *Negotiating) Handle(cmd domain.Command) domain.Transition {
	if cmd.Name() != protocol.TypeNegotiateAgree {
		n.logger.Warn("unexpected command while negotiating", "command", cmd.Name())
		return domain.Stay()
	}
	agreed := protocol.AgreedProtocols(cmd)
	n.logger.Info("protocols negotiated", "protocols", agreed)
	return domain.Replace(NewNegotiated(n.nested, agreed, n.opts...))
}

func (n *Negotiating) Describe() string {
	return "negotiating protocols"
}

// Negotiated runs the application behaviors.
type Negotiated struct {
	*state.Composite
	protocols []string
	logger    *slog.Logger
}

var _ domain.Behavior = (*Negotiated)(nil)

// NewNegotiated builds the application behaviors from nested.
func NewNegotiated(nested state.Factory, protocols []string, opts ...Option) *Negotiated {
	return &Negotiated{
		Composite: state.NewComposite(nested),
		protocols: protocols,
		logger:    newOptions(opts).logger,
	}
}

func (n *Negotiated) Enter() {
	n.logger.Debug("entering state", "state", n.Describe())
	n.Composite.Enter()
}

func (n *Negotiated) Leave() {
	n.logger.Debug("leaving state", "state", n.Describe())
	n.Composite.Leave()
}

func (n *Negotiated) Describe() string {
	return "protocols negotiated"
}

// Protocols returns the protocols the server agreed to. It may be empty.
func (n *Negotiated) Protocols() []string {
	return n.protocols
}
