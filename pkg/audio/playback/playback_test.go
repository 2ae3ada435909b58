package playback_test

import (
	"testing"
	"time"

	"github.com/aretw0/voicelink/pkg/audio/playback"
	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	running bool
	started []string
	stops   int
}

func (p *fakePlayer) Start(url string) error {
	p.started = append(p.started, url)
	p.running = true
	return nil
}

func (p *fakePlayer) Running() bool { return p.running }

func (p *fakePlayer) Stop() {
	p.stops++
	p.running = false
}

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

const (
	progressMessage = `{"type":"out.audio.link/playback-progress","playbackId":"p-1"}`
	doneMessage     = `{"type":"out.audio.link/playback-done","playbackId":"p-1"}`
)

func setup(t *testing.T) (*memory.Transport, *fakePlayer, *clock, *state.Slot) {
	t.Helper()
	tr := memory.New()
	require.True(t, tr.Connect("h", 1, "/"))
	player := &fakePlayer{}
	clk := &clock{t: time.Unix(1000, 0)}
	ready := playback.NewReady(tr, player, playback.Config{
		Server: connection.Endpoint{Host: "10.0.0.2", Port: 8086},
		Now:    clk.Now,
	})
	return tr, player, clk, state.NewSlot(ready)
}

func request(url, id string) domain.Command {
	return domain.NewCommand(protocol.TypePlaybackRequest, map[string]any{
		"type":       protocol.TypePlaybackRequest,
		"url":        url,
		"playbackId": id,
	})
}

func TestReady_StartsPlaybackOnRequest(t *testing.T) {
	tr, player, _, slot := setup(t)
	assert.Equal(t, "ready to play audio", slot.Describe())

	slot.Handle(domain.NewCommand(protocol.TypeMute, nil))
	slot.Handle(domain.NewCommand(protocol.TypePlaybackRequest, map[string]any{"playbackId": "x"}))
	assert.Equal(t, "ready to play audio", slot.Describe())
	assert.Empty(t, player.started)

	slot.Handle(request("/api/tts/p-1.mp3", "p-1"))

	progress, ok := slot.Current().(*playback.Progress)
	require.True(t, ok)
	assert.Equal(t, "p-1", progress.PlaybackID())
	assert.Equal(t, "playing audio from http://10.0.0.2:8086/api/tts/p-1.mp3", slot.Describe())
	assert.Equal(t, []string{"http://10.0.0.2:8086/api/tts/p-1.mp3"}, player.started)
	assert.Empty(t, tr.Sent())
}

func TestProgress_ThrottlesNotifications(t *testing.T) {
	tr, _, clk, slot := setup(t)
	slot.Handle(request("/a.mp3", "p-1"))

	slot.Step()
	clk.Advance(400 * time.Millisecond)
	slot.Step()
	clk.Advance(400 * time.Millisecond)
	slot.Step()
	require.Len(t, tr.SentText(), 1)

	clk.Advance(200 * time.Millisecond)
	slot.Step()
	sent := tr.SentText()
	require.Len(t, sent, 2)
	assert.JSONEq(t, progressMessage, sent[0])
	assert.JSONEq(t, progressMessage, sent[1])
}

func TestProgress_ReturnsToReadyWhenPlayerStops(t *testing.T) {
	tr, player, _, slot := setup(t)
	slot.Handle(request("/a.mp3", "p-1"))
	slot.Step()

	player.running = false
	slot.Step()

	assert.Equal(t, "ready to play audio", slot.Describe())
	sent := tr.SentText()
	require.Len(t, sent, 2)
	assert.JSONEq(t, progressMessage, sent[0])
	assert.JSONEq(t, doneMessage, sent[1])
	assert.Equal(t, 1, player.stops)
}

func TestProgress_LeaveSendsDoneAndStops(t *testing.T) {
	tr, player, _, slot := setup(t)
	slot.Handle(request("/a.mp3", "p-1"))

	slot.Current().Leave()

	sent := tr.SentText()
	require.Len(t, sent, 1)
	assert.JSONEq(t, doneMessage, sent[0])
	assert.Equal(t, 1, player.stops)
}

func TestProgress_IgnoresCommandsWhilePlaying(t *testing.T) {
	_, player, _, slot := setup(t)
	slot.Handle(request("/a.mp3", "p-1"))
	current := slot.Current()

	slot.Handle(request("/b.mp3", "p-2"))

	assert.Same(t, current, slot.Current())
	assert.Len(t, player.started, 1)
}

func TestCanonicalURL(t *testing.T) {
	cfg := playback.Config{Server: connection.Endpoint{Host: "srv", Port: 8086}}
	assert.Equal(t, "http://srv:8086/x.mp3", cfg.CanonicalURL("/x.mp3"))
	assert.Equal(t, "http://srv:8086/x.mp3", cfg.CanonicalURL("x.mp3"))
	assert.Equal(t, "https://cdn/x.mp3", cfg.CanonicalURL("https://cdn/x.mp3"))
}

func TestInterval(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	i := playback.NewInterval(clk.Now)

	assert.True(t, i.Tick(time.Second), "first tick fires")
	assert.False(t, i.Tick(time.Second))
	clk.Advance(999 * time.Millisecond)
	assert.False(t, i.Tick(time.Second))
	clk.Advance(time.Millisecond)
	assert.True(t, i.Tick(time.Second))
	assert.False(t, i.Tick(time.Second))
}
