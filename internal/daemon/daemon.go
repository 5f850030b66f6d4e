// Package daemon keeps relocation records alive for the lifetime of a
// background process and serves them over IPC.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/underlay/internal/ipc"
	"github.com/1broseidon/underlay/internal/wallpaper"
)

// Options configure a Daemon.
type Options struct {
	// SocketPath overrides the default IPC socket location.
	SocketPath        string
	LocatorName       string
	ReconcileInterval time.Duration
	// RestoreOnExit restores every relocated window when Run returns.
	RestoreOnExit bool
	Logger        *slog.Logger
}

// Daemon ties the IPC server and the reconciler to one API.
type Daemon struct {
	api  *wallpaper.API
	opts Options
}

// New creates a daemon serving api.
func New(api *wallpaper.API, opts Options) *Daemon {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Daemon{api: api, opts: opts}
}

// Run serves IPC until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	logger := d.opts.Logger

	var server *ipc.Server
	if d.opts.SocketPath != "" {
		server = ipc.NewServerAt(d.opts.SocketPath, d.api, d.opts.LocatorName)
	} else {
		var err error
		server, err = ipc.NewServer(d.api, d.opts.LocatorName)
		if err != nil {
			return err
		}
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer server.Stop()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: d.opts.ReconcileInterval,
		Logger:   logger,
	}, d.api.Manager())

	reconcilerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		reconciler.Run(reconcilerCtx)
	}()

	if worker, ok := d.api.GetWorkerWindow(); ok {
		logger.Info("underlay daemon started", "socket", server.SocketPath(), "container", worker)
	} else {
		logger.Warn("underlay daemon started without a background container", "socket", server.SocketPath())
	}

	<-ctx.Done()
	logger.Info("shutting down underlay daemon")
	server.Stop()
	cancel()
	<-done

	if d.opts.RestoreOnExit {
		d.restoreAll()
	}
	return nil
}

func (d *Daemon) restoreAll() {
	logger := d.opts.Logger
	records := d.api.Manager().Records()
	if len(records) == 0 {
		return
	}
	failed := d.api.Manager().RestoreAll()
	for id, err := range failed {
		logger.Warn("failed to restore window on exit", "window_id", id, "error", err)
	}
	logger.Info("restored relocated windows", "restored", len(records)-len(failed), "failed", len(failed))
}
