package lifecycle

import (
	"io"
	"log/slog"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/state"
)

// Connected runs nested behaviors while its link is alive.
//
// The reconnect continuation is fixed at construction. It is a back-reference
// only: Connected never enters or steps it, it just hands it to the owning
// slot once the link is lost.
type Connected struct {
	*state.Composite

	link      Link
	reconnect func() domain.Behavior
	policy    Policy
	logger    *slog.Logger
	label     string
	revoke    func()
	lost      bool
}

var _ domain.Behavior = (*Connected)(nil)

// ConnectedOption configures a Connected behavior.
type ConnectedOption func(*Connected)

// WithConnectedLogger configures the structured logger.
func WithConnectedLogger(logger *slog.Logger) ConnectedOption {
	return func(c *Connected) {
		c.logger = logger
	}
}

// WithConnectedDescription overrides the description, which defaults to
// "connected to <link>".
func WithConnectedDescription(label string) ConnectedOption {
	return func(c *Connected) {
		c.label = label
	}
}

// NewConnected creates the connected phase. reconnect is called once, when the
// link is lost, and its result replaces this behavior.
func NewConnected(link Link, reconnect func() domain.Behavior, nested state.Factory, policy Policy, opts ...ConnectedOption) *Connected {
	c := &Connected{
		Composite: state.NewComposite(nested),
		link:      link,
		reconnect: reconnect,
		policy:    policy,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.label == "" {
		c.label = "connected to " + link.Describe()
	}
	return c
}

// ReconnectTo returns a continuation that always yields target.
func ReconnectTo(target domain.Behavior) func() domain.Behavior {
	return func() domain.Behavior { return target }
}

// Enter enters the nested behaviors, then opens inbound delivery if the link
// supports it.
func (c *Connected) Enter() {
	c.logger.Debug("entering state", "state", c.label)
	c.Composite.Enter()

	if s, ok := c.link.(Session); ok {
		c.revoke = s.Open(c.Deliver)
	}
}

// Leave revokes inbound delivery before leaving the nested behaviors.
func (c *Connected) Leave() {
	c.logger.Debug("leaving state", "state", c.label)
	if c.revoke != nil {
		c.revoke()
		c.revoke = nil
	}
	c.Composite.Leave()
}

// Step checks the link. A dead link collapses the nested tree back to the
// reconnect target after the loss delay.
func (c *Connected) Step() domain.Transition {
	if !c.link.Alive() {
		c.logger.Warn("lost link", "link", c.link.Describe(), "reconnect_in", c.policy.LossDelay)
		c.lost = true
		c.policy.sleep(c.policy.LossDelay)
		return domain.Replace(c.reconnect())
	}
	return c.Composite.Step()
}

// Deliver routes an inbound command to the nested behaviors. Commands arriving
// after the link was found dead are ignored.
func (c *Connected) Deliver(cmd domain.Command) {
	if c.lost {
		return
	}
	c.Composite.Hooks().Command(cmd)
	c.Composite.Handle(cmd)
}

func (c *Connected) Describe() string {
	return c.label
}

// Link returns the managed link.
func (c *Connected) Link() Link {
	return c.link
}
