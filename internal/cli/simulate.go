package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/voicelink"
	"github.com/aretw0/voicelink/internal/config"
	"github.com/aretw0/voicelink/internal/logging"
	"github.com/aretw0/voicelink/pkg/attach"
	"github.com/aretw0/voicelink/pkg/audio/capture"
	"github.com/aretw0/voicelink/pkg/transport"
	"github.com/aretw0/voicelink/pkg/transport/memory"
)

// SimulateOptions configures a scripted run on in-memory transports.
type SimulateOptions struct {
	Config config.Config
	Output io.Writer
	// Tick is the pause between steps. Zero steps as fast as possible.
	Tick     time.Duration
	Renderer voicelink.ContentRenderer
	Logger   *slog.Logger
}

// event is one scripted stimulus applied before a step.
type event struct {
	step  int
	label string
	apply func(s *simulation)
}

type simulation struct {
	network *attach.Toggle
	control *memory.Transport
	capture *memory.Transport
	player  *scriptedPlayer
}

// scenario brings the device up, streams audio, plays a clip, toggles mute,
// then drops the control connection and lets it come back.
var scenario = []event{
	{0, "network attached", func(s *simulation) { s.network.Set(attach.StatusAttached) }},
	{2, "server agrees", func(s *simulation) {
		s.control.InjectText(`{"type":"negotiate/agree","protocols":["out.audio.link","out.tts.serverside","in.stt.serverside","in.mute"]}`)
	}},
	{3, "capture address", func(s *simulation) {
		s.control.InjectText(`{"type":"in.stt.serverside/ready","path":"/api/stt/ws"}`)
	}},
	{5, "playback request", func(s *simulation) {
		s.control.InjectText(`{"type":"out.audio.link/playback-request","url":"/media/hello.wav","playbackId":"sim-1"}`)
	}},
	{9, "mute", func(s *simulation) { s.control.InjectText(`{"type":"in.mute/mute"}`) }},
	{11, "unmute", func(s *simulation) { s.control.InjectText(`{"type":"in.mute/unmute"}`) }},
	{13, "control connection lost", func(s *simulation) { s.control.Drop() }},
	{15, "server agrees", func(s *simulation) {
		s.control.InjectText(`{"type":"negotiate/agree","protocols":["in.mute"]}`)
	}},
}

// SimulationSteps is the number of steps the scenario runs.
const SimulationSteps = 18

// Simulate runs the scripted scenario against a device built from cfg, with
// in-memory transports in place of the network.
func Simulate(ctx context.Context, opts SimulateOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &simulation{
		network: &attach.Toggle{Name: "simulated"},
		control: memory.New(),
		capture: memory.New(),
		player:  &scriptedPlayer{frames: 3},
	}

	cfg := opts.Config
	dev := &Device{}
	err := dev.assemble(cfg, parts{
		network:          s.network,
		control:          s.control,
		newCapture:       func() transport.Transport { return s.capture },
		source:           capture.Silence{},
		player:           s.player,
		sleep:            func(time.Duration) {},
		progressInterval: cfg.Playback.ProgressInterval.Std(),
	}, logger)
	if err != nil {
		return err
	}

	runner := &voicelink.Runner{
		Output:   opts.Output,
		Steps:    SimulationSteps,
		Tick:     opts.Tick,
		Renderer: opts.Renderer,
		BeforeStep: func(i int) {
			for _, ev := range scenario {
				if ev.step == i {
					printSystemMessage(opts.Output, "%s", ev.label)
					ev.apply(s)
				}
			}
		},
	}
	if err := runner.Run(ctx, dev.Engine); err != nil {
		return err
	}
	dev.Engine.Stop()

	printSystemMessage(opts.Output, "control sent %d messages, capture sent %d frames, played %v",
		len(s.control.Sent()), len(s.capture.Sent()), s.player.urls)
	return nil
}

// scriptedPlayer reports running for a fixed number of polls per clip.
type scriptedPlayer struct {
	frames    int
	remaining int
	urls      []string
}

func (p *scriptedPlayer) Start(url string) error {
	if url == "" {
		return fmt.Errorf("empty url")
	}
	p.urls = append(p.urls, url)
	p.remaining = p.frames
	return nil
}

func (p *scriptedPlayer) Running() bool {
	if p.remaining <= 0 {
		return false
	}
	p.remaining--
	return true
}

func (p *scriptedPlayer) Stop() {
	p.remaining = 0
}
