package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/voicelink/pkg/state"
	backend "github.com/redis/go-redis/v9"
)

// ErrDeviceNotFound is returned by Load for a device with no live status.
var ErrDeviceNotFound = errors.New("device status not found")

// Status is the published view of one device.
type Status struct {
	DeviceID  string     `json:"device_id"`
	Path      string     `json:"path"`
	Tree      state.Node `json:"tree"`
	Steps     uint64     `json:"steps"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Store publishes device statuses to Redis for fleet dashboards. Statuses
// expire after the TTL, so a device that stops publishing disappears.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of a published status.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "voicelink:device:",
		ttl:    30 * time.Second,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(deviceID string) string {
	return s.prefix + deviceID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Publish stores the status and refreshes its expiry.
func (s *Store) Publish(ctx context.Context, status Status) error {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(status.DeviceID), data, s.ttl)

	// Score = expiry, so List can prune devices that went silent.
	score := float64(status.UpdatedAt.Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: status.DeviceID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Load retrieves the last status of a device.
func (s *Store) Load(ctx context.Context, deviceID string) (*Status, error) {
	val, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var status Status
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}

// Delete removes a device status.
func (s *Store) Delete(ctx context.Context, deviceID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(deviceID))
	pipe.ZRem(ctx, s.indexKey(), deviceID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the devices with a live status, pruning expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired devices: %w", err)
	}

	devices, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
