package playback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
)

// HTTPPlayer streams audio over HTTP into a sink, such as a pipe to an
// external decoder.
type HTTPPlayer struct {
	client *http.Client
	sink   io.Writer
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

var _ Player = (*HTTPPlayer)(nil)

// HTTPOption configures an HTTPPlayer.
type HTTPOption func(*HTTPPlayer)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPPlayer) {
		p.client = c
	}
}

// WithPlayerLogger sets the structured logger.
func WithPlayerLogger(logger *slog.Logger) HTTPOption {
	return func(p *HTTPPlayer) {
		p.logger = logger
	}
}

// NewHTTPPlayer creates a player writing streams to sink.
func NewHTTPPlayer(sink io.Writer, opts ...HTTPOption) *HTTPPlayer {
	p := &HTTPPlayer{
		client: http.DefaultClient,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start requests url and streams the response body in the background.
func (p *HTTPPlayer) Start(url string) error {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to build playback request: %w", err)
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.running.Store(true)
	go func() {
		defer close(done)
		defer p.running.Store(false)
		if err := p.stream(req); err != nil && ctx.Err() == nil {
			p.logger.Warn("playback stream failed", "url", url, "err", err)
		}
	}()
	return nil
}

func (p *HTTPPlayer) stream(req *http.Request) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	_, err = io.Copy(p.sink, resp.Body)
	return err
}

func (p *HTTPPlayer) Running() bool {
	return p.running.Load()
}

// Stop cancels the current stream and waits for it to end.
func (p *HTTPPlayer) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
