// Package websocket implements transport.Transport over a WebSocket client
// connection.
//
// The connection is read by a background goroutine that only queues frames;
// Poll drains the queue on the caller's goroutine, so registered handlers run
// inside the engine tick just like every other behavior call.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/voicelink/pkg/transport"
	"github.com/coder/websocket"
)

// ErrNotConnected is returned by Send when no connection is open.
var ErrNotConnected = errors.New("websocket not connected")

// Client is a reconnectable WebSocket transport.
type Client struct {
	scheme         string
	header         http.Header
	httpClient     *http.Client
	connectTimeout time.Duration
	writeTimeout   time.Duration
	pingTimeout    time.Duration
	readLimit      int64
	queueSize      int
	logger         *slog.Logger

	mu   sync.Mutex
	sess *session
	reg  transport.Registration
}

var _ transport.Transport = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithSecure switches the dial scheme to wss.
func WithSecure(secure bool) Option {
	return func(c *Client) {
		if secure {
			c.scheme = "wss"
		} else {
			c.scheme = "ws"
		}
	}
}

// WithHeader sets extra handshake headers.
func WithHeader(h http.Header) Option {
	return func(c *Client) {
		c.header = h
	}
}

// WithHTTPClient sets the client used for the opening handshake.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithConnectTimeout bounds each Connect call.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = d
	}
}

// WithWriteTimeout bounds each Send call.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.writeTimeout = d
	}
}

// WithPingTimeout bounds the wait for a pong.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.pingTimeout = d
	}
}

// WithReadLimit sets the maximum inbound message size in bytes.
func WithReadLimit(n int64) Option {
	return func(c *Client) {
		c.readLimit = n
	}
}

// WithQueueSize sets how many inbound frames are buffered between polls.
func WithQueueSize(n int) Option {
	return func(c *Client) {
		c.queueSize = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a disconnected client.
func New(opts ...Option) *Client {
	c := &Client{
		scheme:         "ws",
		connectTimeout: 5 * time.Second,
		writeTimeout:   5 * time.Second,
		pingTimeout:    5 * time.Second,
		readLimit:      1 << 20,
		queueSize:      64,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL builds the dial URL for an endpoint.
func (c *Client) URL(host string, port int, path string) string {
	return fmt.Sprintf("%s://%s%s", c.scheme, net.JoinHostPort(host, strconv.Itoa(port)), path)
}

func (c *Client) Connect(host string, port int, path string) bool {
	c.Close()

	u := c.URL(host, port, path)
	ctx, cancel := context.WithTimeout(context.Background(), c.connectTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{
		HTTPClient: c.httpClient,
		HTTPHeader: c.header,
	})
	if err != nil {
		c.logger.Debug("websocket dial failed", "url", u, "err", err)
		return false
	}
	conn.SetReadLimit(c.readLimit)

	sess := newSession(conn, c.queueSize)
	go sess.readLoop(c.logger)

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()
	return true
}

func (c *Client) Close() {
	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()

	if sess != nil {
		sess.close()
	}
}

func (c *Client) Send(msg transport.Message) error {
	sess := c.current()
	if sess == nil {
		return ErrNotConnected
	}

	typ := websocket.MessageText
	if msg.Kind == transport.KindBinary {
		typ = websocket.MessageBinary
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	if err := sess.conn.Write(ctx, typ, msg.Data); err != nil {
		sess.dead.Store(true)
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Poll delivers every frame queued since the previous poll.
func (c *Client) Poll() {
	sess := c.current()
	if sess == nil {
		return
	}
	for {
		select {
		case msg := <-sess.inbound:
			c.mu.Lock()
			reg, stale := c.reg, c.sess != sess
			c.mu.Unlock()
			if stale {
				return
			}
			reg.Deliver(msg)
		default:
			return
		}
	}
}

func (c *Client) Available() bool {
	sess := c.current()
	return sess != nil && !sess.dead.Load()
}

func (c *Client) OnMessage(h transport.Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	revoke := c.reg.Set(h)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		revoke()
	}
}

// Ping sends a ping in the background. A missing pong marks the connection
// dead, which the next liveness check observes.
func (c *Client) Ping() {
	sess := c.current()
	if sess == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(sess.ctx, c.pingTimeout)
		defer cancel()
		if err := sess.conn.Ping(ctx); err != nil {
			if sess.ctx.Err() == nil {
				c.logger.Debug("websocket ping failed", "err", err)
				sess.dead.Store(true)
			}
		}
	}()
}

func (c *Client) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

type session struct {
	conn    *websocket.Conn
	ctx     context.Context
	cancel  context.CancelFunc
	inbound chan transport.Message
	dead    atomic.Bool
	done    chan struct{}
}

func newSession(conn *websocket.Conn, queueSize int) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		conn:    conn,
		ctx:     ctx,
		cancel:  cancel,
		inbound: make(chan transport.Message, queueSize),
		done:    make(chan struct{}),
	}
}

func (s *session) readLoop(logger *slog.Logger) {
	defer close(s.done)
	defer s.dead.Store(true)

	for {
		typ, data, err := s.conn.Read(s.ctx)
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Debug("websocket read ended", "err", err, "status", websocket.CloseStatus(err))
			}
			return
		}

		kind := transport.KindText
		if typ == websocket.MessageBinary {
			kind = transport.KindBinary
		}
		msg := transport.Message{Kind: kind, Data: data, Complete: true}

		select {
		case s.inbound <- msg:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *session) close() {
	s.dead.Store(true)
	s.cancel()
	_ = s.conn.CloseNow()
	<-s.done
}
