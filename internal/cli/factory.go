package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/voicelink"
	"github.com/aretw0/voicelink/internal/config"
	"github.com/aretw0/voicelink/pkg/attach"
	"github.com/aretw0/voicelink/pkg/audio/capture"
	"github.com/aretw0/voicelink/pkg/audio/playback"
	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/device"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/observability"
	"github.com/aretw0/voicelink/pkg/transport"
	"github.com/aretw0/voicelink/pkg/transport/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Device is an assembled engine and the resources it owns.
type Device struct {
	Engine   *voicelink.Engine
	Registry *prometheus.Registry

	closers []io.Closer
}

// Close releases the files opened for capture and playback.
func (d *Device) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// parts are the collaborators that differ between a real run and a
// simulation.
type parts struct {
	network          attach.Attacher
	control          transport.Transport
	newCapture       func() transport.Transport
	source           capture.Source
	player           playback.Player
	sleep            func(d time.Duration)
	progressInterval time.Duration
}

// NewDevice builds the device described by cfg on real websockets, network
// interfaces and audio files.
func NewDevice(cfg config.Config, logger *slog.Logger) (*Device, error) {
	d := &Device{}

	network, err := newAttacher(cfg.Attach)
	if err != nil {
		return nil, err
	}

	wsOpts := []websocket.Option{
		websocket.WithSecure(cfg.Server.Secure),
		websocket.WithLogger(logger.With("component", "websocket")),
	}

	p := parts{
		network: network,
		control: websocket.New(wsOpts...),
	}

	if cfg.Capture.Enabled {
		source, closer, err := newSource(cfg.Capture)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			d.closers = append(d.closers, closer)
		}
		p.source = source
		p.newCapture = func() transport.Transport { return websocket.New(wsOpts...) }
	}

	if cfg.Playback.Enabled {
		sink, closer, err := newSink(cfg.Playback)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		if closer != nil {
			d.closers = append(d.closers, closer)
		}
		p.player = playback.NewHTTPPlayer(sink, playback.WithPlayerLogger(logger.With("component", "player")))
		p.progressInterval = cfg.Playback.ProgressInterval.Std()
	}

	if err := d.assemble(cfg, p, logger); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// assemble wires metrics and logging hooks and creates the engine.
func (d *Device) assemble(cfg config.Config, p parts, logger *slog.Logger) error {
	d.Registry = prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(d.Registry)
	if err != nil {
		return err
	}

	root := device.New(device.Config{
		Server: connection.Endpoint{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
			Path: cfg.Server.Path,
		},
		Network: p.network,
		Control: p.control,
		Policy: lifecycle.Policy{
			RetryInterval: cfg.Connection.RetryInterval.Std(),
			LossDelay:     cfg.Connection.LossDelay.Std(),
			Sleep:         p.sleep,
		},
		NewCaptureTransport: p.newCapture,
		Source:              p.source,
		SampleRate:          cfg.Capture.SampleRate,
		BufferSamples:       cfg.Capture.BufferSamples,
		Player:              p.player,
		ProgressInterval:    p.progressInterval,
		Logger:              logger,
	})

	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger.With("component", "engine")))
	d.Engine = voicelink.New(root,
		voicelink.WithLifecycleHooks(hooks),
		voicelink.WithLogger(logger),
		voicelink.WithTick(cfg.Connection.Tick.Std()),
	)
	return nil
}

func newAttacher(cfg config.Attach) (attach.Attacher, error) {
	switch cfg.Driver {
	case config.DriverStatic:
		return attach.Static{Name: cfg.Interface}, nil
	case config.DriverInterface:
		return attach.NewInterface(cfg.Interface), nil
	default:
		return nil, fmt.Errorf("unknown attach driver %q", cfg.Driver)
	}
}

// newSource opens the capture input: "silence" or a raw PCM file.
func newSource(cfg config.Capture) (capture.Source, io.Closer, error) {
	if cfg.Input == "" || cfg.Input == "silence" {
		return capture.Silence{}, nil, nil
	}
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open capture input: %w", err)
	}
	return capture.NewReaderSource(f, cfg.BufferSamples*2*8), f, nil
}

// newSink opens the playback output: "discard", "-" for Stdout, or a file.
func newSink(cfg config.Playback) (io.Writer, io.Closer, error) {
	switch cfg.Output {
	case "", "discard":
		return io.Discard, nil, nil
	case "-":
		return os.Stdout, nil, nil
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create playback output: %w", err)
	}
	return f, f, nil
}
