package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/voicelink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "/api/face_web/ws", cfg.Server.Path)
	assert.Equal(t, time.Second, cfg.Connection.RetryInterval.Std())
	assert.Equal(t, 10*time.Second, cfg.Connection.LossDelay.Std())
	assert.Equal(t, 16000, cfg.Capture.SampleRate)
	assert.Equal(t, 256, cfg.Capture.BufferSamples)
	assert.Equal(t, time.Second, cfg.Playback.ProgressInterval.Std())
	assert.Equal(t, config.DriverStatic, cfg.Attach.Driver)
}

func TestLoad_Formats(t *testing.T) {
	cases := map[string]string{
		"device.yaml": `
server:
  host: assistant.local
  port: 9000
connection:
  retry_interval: 250ms
attach:
  driver: interface
  interface: wlan0
`,
		"device.toml": `
[server]
host = "assistant.local"
port = 9000

[connection]
retry_interval = "250ms"

[attach]
driver = "interface"
interface = "wlan0"
`,
		"device.jsonc": `{
  // server overrides
  "server": {"host": "assistant.local", "port": 9000},
  "connection": {"retry_interval": "250ms"},
  "attach": {"driver": "interface", "interface": "wlan0"},
}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(write(t, name, content), "")
			require.NoError(t, err)
			assert.Equal(t, "assistant.local", cfg.Server.Host)
			assert.Equal(t, 9000, cfg.Server.Port)
			assert.Equal(t, "/api/face_web/ws", cfg.Server.Path, "defaults kept")
			assert.Equal(t, 250*time.Millisecond, cfg.Connection.RetryInterval.Std())
			assert.Equal(t, 10*time.Second, cfg.Connection.LossDelay.Std())
			assert.Equal(t, config.DriverInterface, cfg.Attach.Driver)
			assert.Equal(t, "wlan0", cfg.Attach.Interface)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := config.Load(write(t, "device.ini", "x=1"), "")
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := config.Load(write(t, "device.yaml", "connection:\n  tick: soon\n"), "")
	assert.Error(t, err)
}

func TestLoad_DotEnvAndOverrides(t *testing.T) {
	env := write(t, ".env", "VOICELINK_SERVER_PORT=7000\nVOICELINK_LOSS_DELAY=2s\n")
	t.Setenv("VOICELINK_SERVER_HOST", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("VOICELINK_SERVER_PORT")
		os.Unsetenv("VOICELINK_LOSS_DELAY")
	})

	cfg, err := config.Load(write(t, "device.yaml", "server:\n  host: from-file\n"), env)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Host)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Connection.LossDelay.Std())
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := config.Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(map[string]string{"VOICELINK_SERVER_PORT": "eighty"})
	assert.ErrorIs(t, err, config.ErrInvalid)

	err = cfg.ApplyEnv(map[string]string{"VOICELINK_REDIS_TTL": "forever"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestApplyEnv_EveryNestedSection(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(map[string]string{
		"VOICELINK_DEVICE_ID":                  "hall",
		"VOICELINK_SERVER_SECURE":              "true",
		"VOICELINK_TICK":                       "20ms",
		"VOICELINK_ATTACH_DRIVER":              "interface",
		"VOICELINK_CAPTURE_BUFFER_SAMPLES":     "512",
		"VOICELINK_PLAYBACK_PROGRESS_INTERVAL": "500ms",
		"VOICELINK_DIAGNOSTICS_ADDR":           ":9090",
		"VOICELINK_REDIS_PREFIX":               "fleet:",
		"VOICELINK_REDIS_TTL":                  "1m",
		"VOICELINK_REDIS_INTERVAL":             "15s",
		"UNRELATED":                            "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "hall", cfg.DeviceID)
	assert.True(t, cfg.Server.Secure)
	assert.Equal(t, 20*time.Millisecond, cfg.Connection.Tick.Std())
	assert.Equal(t, config.DriverInterface, cfg.Attach.Driver)
	assert.Equal(t, 512, cfg.Capture.BufferSamples)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.ProgressInterval.Std())
	assert.Equal(t, ":9090", cfg.Diagnostics.Addr)
	assert.Equal(t, "fleet:", cfg.Redis.Prefix)
	assert.Equal(t, time.Minute, cfg.Redis.TTL.Std())
	assert.Equal(t, 15*time.Second, cfg.Redis.Interval.Std())

	// Unset variables keep their values.
	assert.Equal(t, "192.168.99.248", cfg.Server.Host)
	assert.Equal(t, time.Second, cfg.Connection.RetryInterval.Std())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"empty host":     func(c *config.Config) { c.Server.Host = " " },
		"port":           func(c *config.Config) { c.Server.Port = 70000 },
		"path":           func(c *config.Config) { c.Server.Path = "ws" },
		"retry":          func(c *config.Config) { c.Connection.RetryInterval = 0 },
		"loss":           func(c *config.Config) { c.Connection.LossDelay = -1 },
		"tick":           func(c *config.Config) { c.Connection.Tick = 0 },
		"driver":         func(c *config.Config) { c.Attach.Driver = "wifi" },
		"sample rate":    func(c *config.Config) { c.Capture.SampleRate = 0 },
		"buffer":         func(c *config.Config) { c.Capture.BufferSamples = -1 },
		"progress":       func(c *config.Config) { c.Playback.ProgressInterval = 0 },
		"redis interval": func(c *config.Config) { c.Redis.Addr = "localhost:6379"; c.Redis.Interval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}
