// Package device assembles the behavior tree of a voice device: network
// attach, then the control connection, then the protocol handshake, then the
// application leaves.
package device

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/voicelink/pkg/attach"
	"github.com/aretw0/voicelink/pkg/audio/capture"
	"github.com/aretw0/voicelink/pkg/audio/playback"
	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/handshake"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport"
)

// Applications builds the leaves run once protocols are negotiated. control
// is the control connection transport.
type Applications func(control transport.Transport) []domain.Behavior

// Config holds the collaborators and constants of a device.
type Config struct {
	// Server is the control websocket endpoint.
	Server connection.Endpoint
	// Network brings the device onto the network.
	Network attach.Attacher
	// Control carries the control connection.
	Control transport.Transport
	// Policy holds the connection retry interval and post-disconnect delay.
	Policy lifecycle.Policy

	// Applications overrides the default capture and playback leaves.
	Applications Applications

	// NewCaptureTransport creates the transport of each capture leaf.
	NewCaptureTransport func() transport.Transport
	Source              capture.Source
	SampleRate          int
	BufferSamples       int

	Player           playback.Player
	ProgressInterval time.Duration
	Now              func() time.Time

	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New builds the root behavior of the device.
func New(cfg Config) domain.Behavior {
	logger := cfg.logger()
	connOpts := connection.Options{Policy: cfg.Policy, Logger: logger.With("component", "connection")}

	apps := cfg.Applications
	if apps == nil {
		apps = cfg.defaultApplications
	}

	control := func() []domain.Behavior {
		return []domain.Behavior{
			connection.NewConnecting(cfg.Control, cfg.Server, connection.ControlFactory(func(t transport.Transport) state.Factory {
				return func() []domain.Behavior {
					return []domain.Behavior{
						handshake.NewNegotiating(t, func() []domain.Behavior { return apps(t) },
							handshake.WithLogger(logger.With("component", "handshake"))),
					}
				}
			}, connOpts), connOpts),
		}
	}

	return attach.NewAttaching(cfg.Network, control, attach.Options{
		Policy: cfg.Policy,
		Logger: logger.With("component", "attach"),
	})
}

func (c Config) defaultApplications(t transport.Transport) []domain.Behavior {
	logger := c.logger()
	var leaves []domain.Behavior
	if c.NewCaptureTransport != nil && c.Source != nil {
		leaves = append(leaves, capture.NewWaiting(c.NewCaptureTransport(), c.Source, capture.Config{
			Server:        c.Server,
			SampleRate:    c.SampleRate,
			BufferSamples: c.BufferSamples,
			Connection: connection.Options{
				Policy: c.Policy,
				Logger: logger.With("component", "capture"),
			},
			Logger: logger.With("component", "capture"),
		}))
	}
	if c.Player != nil {
		leaves = append(leaves, playback.NewReady(t, c.Player, playback.Config{
			Server:           c.Server,
			ProgressInterval: c.ProgressInterval,
			Now:              c.Now,
			Logger:           logger.With("component", "playback"),
		}))
	}
	return leaves
}
