package redis

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/voicelink/pkg/state"
)

// Source provides what a heartbeat publishes.
type Source interface {
	Snapshot() state.Node
	Steps() uint64
}

// Heartbeat publishes the status of one device on a fixed interval until ctx
// is done. Publish failures are logged and retried on the next beat.
type Heartbeat struct {
	Store    *Store
	DeviceID string
	Source   Source
	Interval time.Duration
	Logger   *slog.Logger
}

// Beat publishes the current status once.
func (h *Heartbeat) Beat(ctx context.Context) error {
	tree := h.Source.Snapshot()
	return h.Store.Publish(ctx, Status{
		DeviceID: h.DeviceID,
		Path:     tree.Path(),
		Tree:     tree,
		Steps:    h.Source.Steps(),
	})
}

// Run beats until ctx is done.
func (h *Heartbeat) Run(ctx context.Context) {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := h.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := h.Beat(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("failed to publish device status", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
