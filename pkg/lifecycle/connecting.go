package lifecycle

import (
	"io"
	"log/slog"

	"github.com/aretw0/voicelink/pkg/domain"
)

// ConnectedFactory builds the connected phase. reconnect is the behavior to
// return to when the link is lost.
type ConnectedFactory func(reconnect domain.Behavior) domain.Behavior

// Connecting retries a link until it is established.
type Connecting struct {
	link   Link
	build  ConnectedFactory
	policy Policy
	logger *slog.Logger
	label  string
	handle func(domain.Command)
}

var _ domain.Behavior = (*Connecting)(nil)

// ConnectingOption configures a Connecting behavior.
type ConnectingOption func(*Connecting)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) ConnectingOption {
	return func(c *Connecting) {
		c.logger = logger
	}
}

// WithDescription overrides the description, which defaults to
// "connecting to <link>".
func WithDescription(label string) ConnectingOption {
	return func(c *Connecting) {
		c.label = label
	}
}

// WithCommandHandler observes commands routed to the connecting phase. The
// phase itself never reacts to commands.
func WithCommandHandler(h func(domain.Command)) ConnectingOption {
	return func(c *Connecting) {
		c.handle = h
	}
}

// NewConnecting creates the connecting phase for link.
func NewConnecting(link Link, build ConnectedFactory, policy Policy, opts ...ConnectingOption) *Connecting {
	c := &Connecting{
		link:   link,
		build:  build,
		policy: policy,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.label == "" {
		c.label = "connecting to " + link.Describe()
	}
	return c
}

// Enter resets the link so a half-open connection never survives a reconnect.
func (c *Connecting) Enter() {
	c.logger.Debug("entering state", "state", c.label)
	c.link.Reset()
}

func (c *Connecting) Leave() {
	c.logger.Debug("leaving state", "state", c.label)
}

// Step makes one attempt. On failure it blocks for the retry interval and
// keeps itself active.
func (c *Connecting) Step() domain.Transition {
	if c.link.Establish() {
		c.logger.Info("link established", "link", c.link.Describe())
		return domain.Replace(c.build(c))
	}

	c.logger.Warn("could not establish link", "link", c.link.Describe(), "retry_in", c.policy.RetryInterval)
	c.policy.sleep(c.policy.RetryInterval)
	return domain.Stay()
}

func (c *Connecting) Handle(cmd domain.Command) domain.Transition {
	if c.handle != nil {
		c.handle(cmd)
	}
	return domain.Stay()
}

func (c *Connecting) Describe() string {
	return c.label
}

// Link returns the managed link.
func (c *Connecting) Link() Link {
	return c.link
}
