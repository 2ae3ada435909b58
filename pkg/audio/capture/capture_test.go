package capture_test

import (
	"bytes"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/voicelink/pkg/audio/capture"
	"github.com/aretw0/voicelink/pkg/connection"
	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/lifecycle"
	"github.com/aretw0/voicelink/pkg/protocol"
	"github.com/aretw0/voicelink/pkg/state"
	"github.com/aretw0/voicelink/pkg/transport"
	"github.com/aretw0/voicelink/pkg/transport/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource yields per bytes per read, counting up from 1.
type countingSource struct {
	per     int
	next    byte
	starts  int
	stops   int
	started bool
}

func (s *countingSource) Start() error {
	s.starts++
	s.started = true
	return nil
}

func (s *countingSource) Stop() error {
	s.stops++
	s.started = false
	return nil
}

func (s *countingSource) Read(p []byte) (int, error) {
	n := min(s.per, len(p))
	for i := 0; i < n; i++ {
		s.next++
		p[i] = s.next
	}
	return n, nil
}

func config() capture.Config {
	return capture.Config{
		Server:        connection.Endpoint{Host: "10.0.0.2", Port: 8086},
		BufferSamples: 4,
		Connection: connection.Options{Policy: lifecycle.Policy{
			RetryInterval: time.Second,
			Sleep:         func(time.Duration) {},
		}},
	}
}

func ready(path string) domain.Command {
	return domain.NewCommand(protocol.TypeSTTReady, map[string]any{"type": protocol.TypeSTTReady, "path": path})
}

func cmd(name string) domain.Command {
	return domain.NewCommand(name, nil)
}

func TestWaiting_ReadyStartsCaptureConnection(t *testing.T) {
	tr := memory.New()
	src := &countingSource{per: 8}
	waiting := capture.NewWaiting(tr, src, config())
	slot := state.NewSlot(waiting)
	assert.Equal(t, "waiting for audio capture websocket address", slot.Describe())

	slot.Step()
	slot.Handle(cmd("out.audio.link/playback-request"))
	assert.Same(t, waiting, slot.Current())

	slot.Handle(ready("/api/stt/ws"))
	assert.Equal(t, "connecting to audio capture websocket", slot.Describe())
	assert.Equal(t, 1, tr.Closes(), "capture transport reset on entry")

	slot.Step()
	assert.Equal(t, []string{"10.0.0.2:8086/api/stt/ws?sample_rate=16000"}, tr.Dials())
	assert.Equal(t, "audio capture websocket connected > capturing audio", state.Snapshot(slot.Current()).Path())
	assert.Equal(t, 1, src.starts)
}

func TestWaiting_ReadyWithoutPathIsIgnored(t *testing.T) {
	waiting := capture.NewWaiting(memory.New(), capture.Silence{}, config())
	tr := waiting.Handle(domain.NewCommand(protocol.TypeSTTReady, map[string]any{"type": protocol.TypeSTTReady}))
	assert.True(t, tr.IsStay(waiting))
}

func TestMuteIsTrackedBeforeConnecting(t *testing.T) {
	tr := memory.New()
	tr.ScriptConnect(false)
	src := &countingSource{per: 8}
	waiting := capture.NewWaiting(tr, src, config())
	slot := state.NewSlot(waiting)

	slot.Handle(cmd(protocol.TypeMute))
	assert.True(t, waiting.Context().Muted())
	slot.Handle(ready("/stt"))

	slot.Handle(cmd(protocol.TypeUnmute))
	slot.Handle(cmd(protocol.TypeMute))
	slot.Step()
	assert.Equal(t, "connecting to audio capture websocket", slot.Describe())
	slot.Step()

	assert.Equal(t, "audio capture websocket connected > audio capture muted", state.Snapshot(slot.Current()).Path())
	assert.Zero(t, src.starts)
}

func TestCapturing_SendsFullBuffers(t *testing.T) {
	tr := memory.New()
	src := &countingSource{per: 3}
	waiting := capture.NewWaiting(tr, src, config())
	slot := state.NewSlot(waiting)
	slot.Handle(ready("/stt"))
	slot.Step()

	slot.Step()
	slot.Step()
	assert.Empty(t, tr.Sent())
	slot.Step()

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, transport.KindBinary, sent[0].Kind)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, sent[0].Data)

	for i := 0; i < 3; i++ {
		slot.Step()
	}
	sent = tr.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, []byte{9, 10, 11, 12, 13, 14, 15, 16}, sent[1].Data)
}

func TestCapturing_MuteAndUnmute(t *testing.T) {
	tr := memory.New()
	src := &countingSource{per: 8}
	waiting := capture.NewWaiting(tr, src, config())
	slot := state.NewSlot(waiting)
	slot.Handle(ready("/stt"))
	slot.Step()
	require.Equal(t, 1, src.starts)

	slot.Handle(cmd(protocol.TypeMute))
	assert.Equal(t, "audio capture websocket connected > audio capture muted", state.Snapshot(slot.Current()).Path())
	assert.Equal(t, 1, src.stops)
	assert.True(t, waiting.Context().Muted())

	slot.Step()
	assert.Empty(t, tr.Sent(), "muted capture sends nothing")

	slot.Handle(cmd(protocol.TypeUnmute))
	assert.Equal(t, 2, src.starts)
	assert.False(t, waiting.Context().Muted())
	slot.Step()
	assert.Len(t, tr.Sent(), 1)
}

func TestConnected_InboundMessagesAreIgnored(t *testing.T) {
	tr := memory.New()
	src := &countingSource{per: 1}
	waiting := capture.NewWaiting(tr, src, config())
	slot := state.NewSlot(waiting)
	slot.Handle(ready("/stt"))
	slot.Step()

	tr.InjectText(`{"type":"in.mute/mute"}`)
	slot.Step()

	assert.False(t, waiting.Context().Muted())
	assert.Equal(t, "audio capture websocket connected > capturing audio", state.Snapshot(slot.Current()).Path())
}

func TestReaderSource_DrainsWithoutBlocking(t *testing.T) {
	src := capture.NewReaderSource(bytes.NewReader([]byte{1, 2, 3, 4, 5}), 0)
	require.NoError(t, src.Start())

	buf := make([]byte, 8)
	var got []byte
	assert.Eventually(t, func() bool {
		n, _ := src.Read(buf)
		got = append(got, buf[:n]...)
		return len(got) == 5
	}, time.Second, time.Millisecond)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
	require.NoError(t, src.Stop())
}

// exclusiveReader records how many Read calls were ever in flight at once.
type exclusiveReader struct {
	r        io.Reader
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (e *exclusiveReader) Read(p []byte) (int, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		seen := e.maxSeen.Load()
		if n <= seen || e.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	return e.r.Read(p)
}

func TestReaderSource_RestartKeepsSingleReader(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	reader := &exclusiveReader{r: pr}
	src := capture.NewReaderSource(reader, 0)

	buf := make([]byte, 8)
	for cycle := byte(1); cycle <= 3; cycle++ {
		require.NoError(t, src.Start())
		want := []byte{cycle, cycle + 10}
		go func() { _, _ = pw.Write(want) }()

		var got []byte
		require.Eventually(t, func() bool {
			n, _ := src.Read(buf)
			got = append(got, buf[:n]...)
			return len(got) >= len(want)
		}, time.Second, time.Millisecond, "cycle %d", cycle)
		assert.Equal(t, want, got, "cycle %d", cycle)
		require.NoError(t, src.Stop())
	}

	assert.Equal(t, int32(1), reader.maxSeen.Load(), "the reader never has two consumers")
}

func TestSilence(t *testing.T) {
	buf := []byte{1, 2}
	n, err := capture.Silence{}.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0, 0}, buf)
}
