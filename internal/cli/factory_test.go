package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/voicelink/internal/cli"
	"github.com/aretw0/voicelink/internal/config"
	"github.com/aretw0/voicelink/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice_Defaults(t *testing.T) {
	dev, err := cli.NewDevice(config.Default(), logging.NewNop())
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, "connecting to network (static)", dev.Engine.Snapshot().Path())
	assert.NotNil(t, dev.Registry)
}

func TestNewDevice_InterfaceDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Attach.Driver = config.DriverInterface
	cfg.Attach.Interface = "wlan0"

	dev, err := cli.NewDevice(cfg, logging.NewNop())
	require.NoError(t, err)
	defer dev.Close()
	assert.Equal(t, "connecting to network (wlan0)", dev.Engine.Snapshot().Path())
}

func TestNewDevice_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Attach.Driver = "carrier-pigeon"

	_, err := cli.NewDevice(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "unknown attach driver")
}

func TestNewDevice_Files(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mic.raw")
	require.NoError(t, os.WriteFile(input, make([]byte, 64), 0o644))

	cfg := config.Default()
	cfg.Capture.Input = input
	cfg.Playback.Output = filepath.Join(dir, "speaker.raw")

	dev, err := cli.NewDevice(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, dev.Close())
	assert.FileExists(t, cfg.Playback.Output)

	cfg.Capture.Input = filepath.Join(dir, "missing.raw")
	_, err = cli.NewDevice(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to open capture input")
}

func TestRun_CancelledBeforeFirstStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.DeviceID = "kitchen"
	var out bytes.Buffer
	err := cli.Run(ctx, cli.RunOptions{Config: cfg, Output: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), ">>> Device 'kitchen' targeting 192.168.99.248:8086/api/face_web/ws")
	assert.Contains(t, out.String(), "connecting to network (static)")
}

func TestRun_RejectsLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"
	err := cli.Run(context.Background(), cli.RunOptions{Config: cfg, Output: &bytes.Buffer{}})
	assert.Error(t, err)
}
