// Package transport defines the message transport consumed by the connection
// lifecycle. Implementations live in sub-packages.
package transport

import "fmt"

// Kind distinguishes text frames from binary frames.
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Message is one frame received from or sent to the peer.
type Message struct {
	Kind Kind
	Data []byte
	// Complete is false for a fragment of a larger message.
	Complete bool
}

// Text builds a complete text message.
func Text(s string) Message {
	return Message{Kind: KindText, Data: []byte(s), Complete: true}
}

// Binary builds a complete binary message.
func Binary(b []byte) Message {
	return Message{Kind: KindBinary, Data: b, Complete: true}
}

// IsText reports whether m is a text frame.
func (m Message) IsText() bool {
	return m.Kind == KindText
}

// Handler receives inbound messages.
type Handler func(Message)

// Transport is a polled, single-owner message connection.
//
// All methods are called from the engine goroutine. Implementations that read
// in the background must only deliver messages from within Poll.
type Transport interface {
	// Connect attempts one synchronous connection. It reports success.
	Connect(host string, port int, path string) bool

	// Close tears the connection down. Closing a closed transport is a no-op.
	Close()

	// Send writes one message.
	Send(msg Message) error

	// Poll delivers pending inbound messages to the registered handler.
	Poll()

	// Available reports whether the connection is still alive.
	Available() bool

	// OnMessage registers h and returns a function revoking the
	// registration. After revoke returns h is never called again.
	OnMessage(h Handler) (revoke func())

	// Ping issues a liveness probe.
	Ping()
}

// Registration holds at most one handler and hands out revocation tokens, so
// a stale revoke never removes a newer registration.
type Registration struct {
	handler Handler
	gen     uint64
}

// Set installs h and returns its revoke function.
func (r *Registration) Set(h Handler) func() {
	r.gen++
	gen := r.gen
	r.handler = h
	return func() {
		if r.gen == gen {
			r.handler = nil
		}
	}
}

// Deliver calls the current handler, if any.
func (r *Registration) Deliver(msg Message) {
	if r.handler != nil {
		r.handler(msg)
	}
}

// Active reports whether a handler is registered.
func (r *Registration) Active() bool {
	return r.handler != nil
}
