package connection

import (
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport"
)

// NewControlConnected creates the connected phase of the control connection.
//
// Every inbound frame is decoded as a command. Fragments, binary frames and
// bodies that are not objects with a string "type" are logged and dropped
// without reaching any behavior; valid commands are fanned out to the nested
// behaviors.
func NewControlConnected(reconnect domain.Behavior, t transport.Transport, nested state.Factory, opts Options) *lifecycle.Connected {
	logger := opts.logger()
	var c *lifecycle.Connected
	c = NewConnected(reconnect, t, nested, func(msg transport.Message, deliver func(domain.Command)) {
		cmd, err := protocol.DecodeCommand(msg)
		if err != nil {
			logger.Warn("invalid control connection inbound message", "err", err, "kind", msg.Kind, "size", len(msg.Data))
			c.Hooks().Drop(err)
			return
		}
		deliver(cmd)
	}, opts, lifecycle.WithConnectedDescription("connected to control websocket"))
	return c
}

// ControlFactory adapts NewControlConnected to a connecting phase's Factory.
func ControlFactory(nested func(t transport.Transport) state.Factory, opts Options) Factory {
	return func(reconnect domain.Behavior, t transport.Transport) domain.Behavior {
		return NewControlConnected(reconnect, t, nested(t), opts)
	}
}

// IgnoreMessages logs every inbound frame as unexpected. It suits
// connections that only carry outbound data.
func IgnoreMessages(opts Options) MessageHandler {
	logger := opts.logger()
	return func(msg transport.Message, _ func(domain.Command)) {
		logger.Warn("unexpected inbound message", "kind", msg.Kind, "size", len(msg.Data))
	}
}
