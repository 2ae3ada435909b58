// Package memory provides a scripted in-process transport.
//
// It is used by tests and by the simulate command to drive the connection
// lifecycle without a server: connect outcomes are scripted, sent messages are
// recorded and inbound frames are injected by the caller.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/voicelink/pkg/transport"
)

// ErrNotConnected is returned by Send on a closed transport.
var ErrNotConnected = errors.New("memory transport not connected")

// Transport implements transport.Transport in memory.
type Transport struct {
	mu sync.Mutex

	script         []bool
	defaultConnect bool

	connected bool
	inbound   []transport.Message
	reg       transport.Registration

	dials  []string
	sent   []transport.Message
	closes int
	pings  int
	polls  int
}

var _ transport.Transport = (*Transport)(nil)

// New creates a transport whose connects succeed unless scripted otherwise.
func New() *Transport {
	return &Transport{defaultConnect: true}
}

// ScriptConnect queues the outcomes of the next Connect calls. Once the script
// is exhausted Connect falls back to the default outcome.
func (t *Transport) ScriptConnect(results ...bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.script = append(t.script, results...)
}

// SetDefaultConnect sets the outcome used when no scripted result is left.
func (t *Transport) SetDefaultConnect(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defaultConnect = ok
}

// Inject queues inbound messages; they are delivered by the next Poll.
func (t *Transport) Inject(msgs ...transport.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbound = append(t.inbound, msgs...)
}

// InjectText queues inbound text messages.
func (t *Transport) InjectText(texts ...string) {
	for _, s := range texts {
		t.Inject(transport.Text(s))
	}
}

// Drop simulates the peer going away.
func (t *Transport) Drop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
}

func (t *Transport) Connect(host string, port int, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dials = append(t.dials, fmt.Sprintf("%s:%d%s", host, port, path))
	ok := t.defaultConnect
	if len(t.script) > 0 {
		ok = t.script[0]
		t.script = t.script[1:]
	}
	t.connected = ok
	return ok
}

func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	t.connected = false
	t.inbound = nil
}

func (t *Transport) Send(msg transport.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return ErrNotConnected
	}
	t.sent = append(t.sent, msg)
	return nil
}

// Poll delivers queued messages outside the lock so handlers may Send.
func (t *Transport) Poll() {
	t.mu.Lock()
	t.polls++
	if !t.connected {
		t.mu.Unlock()
		return
	}
	pending := t.inbound
	t.inbound = nil
	t.mu.Unlock()

	for _, msg := range pending {
		t.mu.Lock()
		reg := t.reg
		t.mu.Unlock()
		reg.Deliver(msg)
	}
}

func (t *Transport) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *Transport) OnMessage(h transport.Handler) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	revoke := t.reg.Set(h)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		revoke()
	}
}

func (t *Transport) Ping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pings++
}

// Dials returns every Connect target as "host:port/path".
func (t *Transport) Dials() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.dials...)
}

// Sent returns every message sent so far.
func (t *Transport) Sent() []transport.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]transport.Message(nil), t.sent...)
}

// SentText returns the payloads of the text messages sent so far.
func (t *Transport) SentText() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, m := range t.sent {
		if m.IsText() {
			out = append(out, string(m.Data))
		}
	}
	return out
}

// Closes returns how many times Close was called.
func (t *Transport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Pings returns how many times Ping was called.
func (t *Transport) Pings() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pings
}

// Subscribed reports whether a message handler is registered.
func (t *Transport) Subscribed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.Active()
}
