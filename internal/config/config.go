// Package config loads the device configuration.
//
// A configuration file is optional. Its format is chosen by extension: YAML
// (.yaml, .yml), TOML (.toml) or JSON with comments (.json, .jsonc). Values
// from the file are applied over the defaults, then VOICELINK_* environment
// variables are applied over the result. A .env file, when present, is loaded
// into the environment first.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is wrapped by every validation error.
	ErrInvalid = errors.New("invalid configuration")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)

// Attach drivers.
const (
	DriverStatic    = "static"
	DriverInterface = "interface"
)

// Config is the complete device configuration.
type Config struct {
	DeviceID string `json:"device_id" yaml:"device_id" toml:"device_id" env:"DEVICE_ID"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`

	Server      Server      `json:"server" yaml:"server" toml:"server" envPrefix:"SERVER_"`
	Connection  Connection  `json:"connection" yaml:"connection" toml:"connection"`
	Attach      Attach      `json:"attach" yaml:"attach" toml:"attach" envPrefix:"ATTACH_"`
	Capture     Capture     `json:"capture" yaml:"capture" toml:"capture" envPrefix:"CAPTURE_"`
	Playback    Playback    `json:"playback" yaml:"playback" toml:"playback" envPrefix:"PLAYBACK_"`
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics" toml:"diagnostics" envPrefix:"DIAGNOSTICS_"`
	Redis       Redis       `json:"redis" yaml:"redis" toml:"redis" envPrefix:"REDIS_"`
}

// Server is the voice assistant server.
type Server struct {
	Host   string `json:"host" yaml:"host" toml:"host" env:"HOST"`
	Port   int    `json:"port" yaml:"port" toml:"port" env:"PORT"`
	Path   string `json:"path" yaml:"path" toml:"path" env:"PATH"`
	Secure bool   `json:"secure" yaml:"secure" toml:"secure" env:"SECURE"`
}

// Connection holds the lifecycle delays.
type Connection struct {
	RetryInterval Duration `json:"retry_interval" yaml:"retry_interval" toml:"retry_interval" env:"RETRY_INTERVAL"`
	LossDelay     Duration `json:"loss_delay" yaml:"loss_delay" toml:"loss_delay" env:"LOSS_DELAY"`
	Tick          Duration `json:"tick" yaml:"tick" toml:"tick" env:"TICK"`
}

// Attach selects the network attach driver.
type Attach struct {
	Driver    string `json:"driver" yaml:"driver" toml:"driver" env:"DRIVER"`
	Interface string `json:"interface" yaml:"interface" toml:"interface" env:"INTERFACE"`
}

// Capture configures microphone streaming.
type Capture struct {
	Enabled       bool   `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Input         string `json:"input" yaml:"input" toml:"input" env:"INPUT"`
	SampleRate    int    `json:"sample_rate" yaml:"sample_rate" toml:"sample_rate" env:"SAMPLE_RATE"`
	BufferSamples int    `json:"buffer_samples" yaml:"buffer_samples" toml:"buffer_samples" env:"BUFFER_SAMPLES"`
}

// Playback configures audio output.
type Playback struct {
	Enabled          bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Output           string   `json:"output" yaml:"output" toml:"output" env:"OUTPUT"`
	ProgressInterval Duration `json:"progress_interval" yaml:"progress_interval" toml:"progress_interval" env:"PROGRESS_INTERVAL"`
}

// Diagnostics configures the local HTTP endpoint. An empty Addr disables it.
type Diagnostics struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
}

// Redis configures status publishing. An empty Addr disables it.
type Redis struct {
	Addr     string   `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	Password string   `json:"password" yaml:"password" toml:"password" env:"PASSWORD"`
	DB       int      `json:"db" yaml:"db" toml:"db" env:"DB"`
	Prefix   string   `json:"prefix" yaml:"prefix" toml:"prefix" env:"PREFIX"`
	TTL      Duration `json:"ttl" yaml:"ttl" toml:"ttl" env:"TTL"`
	Interval Duration `json:"interval" yaml:"interval" toml:"interval" env:"INTERVAL"`
}

// Default returns the built-in configuration.
func Default() Config {
	host, _ := os.Hostname()
	if host == "" {
		host = "voicelink"
	}
	return Config{
		DeviceID: host,
		LogLevel: "info",
		Server: Server{
			Host: "192.168.99.248",
			Port: 8086,
			Path: "/api/face_web/ws",
		},
		Connection: Connection{
			RetryInterval: Duration(time.Second),
			LossDelay:     Duration(10 * time.Second),
			Tick:          Duration(10 * time.Millisecond),
		},
		Attach: Attach{
			Driver: DriverStatic,
		},
		Capture: Capture{
			Enabled:       true,
			Input:         "silence",
			SampleRate:    16000,
			BufferSamples: 256,
		},
		Playback: Playback{
			Enabled:          true,
			Output:           "discard",
			ProgressInterval: Duration(time.Second),
		},
		Redis: Redis{
			Prefix:   "voicelink:device:",
			TTL:      Duration(30 * time.Second),
			Interval: Duration(10 * time.Second),
		},
	}
}

// Load builds the configuration. path may be empty; envFile may name a
// missing file.
func Load(path, envFile string) (Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path. If the file does not exist
// it is silently ignored so that .env files remain optional.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Host) == "":
		return fmt.Errorf("%w: server host is required", ErrInvalid)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server port %d out of range", ErrInvalid, c.Server.Port)
	case !strings.HasPrefix(c.Server.Path, "/"):
		return fmt.Errorf("%w: server path %q must start with /", ErrInvalid, c.Server.Path)
	case c.Connection.RetryInterval <= 0:
		return fmt.Errorf("%w: connection retry interval must be positive", ErrInvalid)
	case c.Connection.LossDelay < 0:
		return fmt.Errorf("%w: connection loss delay must not be negative", ErrInvalid)
	case c.Connection.Tick <= 0:
		return fmt.Errorf("%w: connection tick must be positive", ErrInvalid)
	case c.Attach.Driver != DriverStatic && c.Attach.Driver != DriverInterface:
		return fmt.Errorf("%w: unknown attach driver %q", ErrInvalid, c.Attach.Driver)
	case c.Capture.SampleRate <= 0:
		return fmt.Errorf("%w: capture sample rate must be positive", ErrInvalid)
	case c.Capture.BufferSamples <= 0:
		return fmt.Errorf("%w: capture buffer size must be positive", ErrInvalid)
	case c.Playback.ProgressInterval <= 0:
		return fmt.Errorf("%w: playback progress interval must be positive", ErrInvalid)
	case c.Redis.Addr != "" && c.Redis.Interval <= 0:
		return fmt.Errorf("%w: redis interval must be positive", ErrInvalid)
	}
	return nil
}
