package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/voicelink"
	httpAdapter "github.com/aretw0/voicelink/internal/adapters/http"
	redisAdapter "github.com/aretw0/voicelink/internal/adapters/redis"
	"github.com/aretw0/voicelink/internal/config"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config  config.Config
	Output  io.Writer
	Quiet   bool
	Version string
	// Renderer transforms printed trees, e.g. into ANSI.
	Renderer voicelink.ContentRenderer
}

// Run builds the device and steps it until ctx is done. The diagnostics
// server and the Redis heartbeat run alongside when configured.
func Run(ctx context.Context, opts RunOptions) error {
	logger, err := createLogger(opts.Config.LogLevel)
	if err != nil {
		return err
	}
	logger = logger.With("device_id", opts.Config.DeviceID)

	dev, err := NewDevice(opts.Config, logger)
	if err != nil {
		return fmt.Errorf("error initializing device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warn("failed to release device resources", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if addr := opts.Config.Diagnostics.Addr; addr != "" {
		srv := &http.Server{
			Addr:    addr,
			Handler: httpAdapter.NewHandler(dev.Engine, dev.Registry, opts.Version),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveDiagnostics(ctx, srv, logger)
		}()
	}

	if r := opts.Config.Redis; r.Addr != "" {
		store := redisAdapter.New(r.Addr, r.Password, r.DB,
			redisAdapter.WithPrefix(r.Prefix),
			redisAdapter.WithTTL(r.TTL.Std()),
		)
		hb := &redisAdapter.Heartbeat{
			Store:    store,
			DeviceID: opts.Config.DeviceID,
			Source:   dev.Engine,
			Interval: r.Interval.Std(),
			Logger:   logger.With("component", "heartbeat"),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer store.Close()
			hb.Run(ctx)
			if err := store.Delete(context.Background(), opts.Config.DeviceID); err != nil {
				logger.Warn("failed to remove device status", "err", err)
			}
		}()
	}

	if !opts.Quiet {
		printSystemMessage(opts.Output, "Device '%s' targeting %s:%d%s",
			opts.Config.DeviceID, opts.Config.Server.Host, opts.Config.Server.Port, opts.Config.Server.Path)
	}

	runner := &voicelink.Runner{
		Output:   opts.Output,
		Tick:     opts.Config.Connection.Tick.Std(),
		Renderer: opts.Renderer,
	}
	if opts.Quiet {
		runner.Output = io.Discard
	}
	err = runner.Run(ctx, dev.Engine)
	dev.Engine.Stop()
	return err
}

func serveDiagnostics(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("diagnostics listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("diagnostics server failed", "err", err)
		}
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
	}
}
