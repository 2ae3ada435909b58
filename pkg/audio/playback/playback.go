// Package playback plays audio the server links to and reports progress.
package playback

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/transport"
)

// DefaultProgressInterval is the minimum time between progress notifications.
const DefaultProgressInterval = time.Second

// Player plays one audio stream at a time.
//
// A single Player is shared by every playback behavior of a device; it is
// started on entry to Progress and stopped on leave.
type Player interface {
	// Start begins playing url, replacing any current stream.
	Start(url string) error
	// Running reports whether a stream is still playing.
	Running() bool
	// Stop ends the current stream. Stopping an idle player is a no-op.
	Stop()
}

// Config configures the playback leaf.
type Config struct {
	// Server is the host and port relative playback URLs are resolved against.
	Server           connection.Endpoint
	ProgressInterval time.Duration
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c Config) interval() time.Duration {
	if c.ProgressInterval <= 0 {
		return DefaultProgressInterval
	}
	return c.ProgressInterval
}

// CanonicalURL resolves a server-relative URL against the server endpoint.
// URLs that already carry a scheme are kept.
func (c Config) CanonicalURL(url string) string {
	if strings.Contains(url, "://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return "http://" + c.Server.WithPath(url).String()
}

// Request is the payload of a playback request.
type Request struct {
	URL        string `json:"url"`
	PlaybackID string `json:"playbackId"`
}

// Ready waits for a playback request.
type Ready struct {
	t      transport.Transport
	player Player
	cfg    Config
	logger *slog.Logger
}

var _ domain.Behavior = (*Ready)(nil)

// NewReady creates a playback leaf sending notifications over t.
func NewReady(t transport.Transport, player Player, cfg Config) *Ready {
	return &Ready{t: t, player: player, cfg: cfg, logger: cfg.logger()}
}

func (r *Ready) Enter() {}
func (r *Ready) Leave() {}

func (r *Ready) Step() domain.Transition {
	return domain.Stay()
}

func (r *Ready) Handle(cmd domain.Command) domain.Transition {
	if cmd.Name() != protocol.TypePlaybackRequest {
		return domain.Stay()
	}
	var req Request
	if err := cmd.Decode(&req); err != nil {
		r.logger.Warn("invalid playback request", "err", err)
		return domain.Stay()
	}
	if req.URL == "" {
		r.logger.Warn("playback request without url", "playback_id", req.PlaybackID)
		return domain.Stay()
	}
	return domain.Replace(NewProgress(r.t, r.player, r.cfg, req))
}

func (r *Ready) Describe() string {
	return "ready to play audio"
}

// Progress plays one stream. It notifies the server while playing and once
// more when it is left, whatever the reason.
type Progress struct {
	t      transport.Transport
	player Player
	cfg    Config
	logger *slog.Logger

	url      string
	id       string
	progress transport.Message
	done     transport.Message
	notify   *Interval
}

var _ domain.Behavior = (*Progress)(nil)

// NewProgress creates the playing phase for req.
func NewProgress(t transport.Transport, player Player, cfg Config, req Request) *Progress {
	p := &Progress{
		t:      t,
		player: player,
		cfg:    cfg,
		logger: cfg.logger().With("playback_id", req.PlaybackID),
		url:    cfg.CanonicalURL(req.URL),
		id:     req.PlaybackID,
		notify: NewInterval(cfg.Now),
	}
	fields := map[string]any{"playbackId": req.PlaybackID}
	p.progress, _ = protocol.Encode(protocol.TypePlaybackProgress, fields)
	p.done, _ = protocol.Encode(protocol.TypePlaybackDone, fields)
	return p
}

func (p *Progress) Enter() {
	p.logger.Info("starting playback", "url", p.url)
	if err := p.player.Start(p.url); err != nil {
		p.logger.Error("failed to start playback", "url", p.url, "err", err)
	}
}

func (p *Progress) Leave() {
	if err := p.t.Send(p.done); err != nil {
		p.logger.Warn("failed to send playback done", "err", err)
	}
	p.player.Stop()
}

// Step sends a progress notification at most once per interval and returns
// to Ready when the player stops.
func (p *Progress) Step() domain.Transition {
	if p.notify.Tick(p.cfg.interval()) {
		if err := p.t.Send(p.progress); err != nil {
			p.logger.Warn("failed to send playback progress", "err", err)
		} else {
			p.logger.Debug("sent playback progress")
		}
	}
	if !p.player.Running() {
		return domain.Replace(NewReady(p.t, p.player, p.cfg))
	}
	return domain.Stay()
}

func (p *Progress) Handle(domain.Command) domain.Transition {
	return domain.Stay()
}

func (p *Progress) Describe() string {
	return "playing audio from " + p.url
}

// PlaybackID returns the server-assigned id of the stream.
func (p *Progress) PlaybackID() string {
	return p.id
}
