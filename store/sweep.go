package store

import (
	"context"
	"log/slog"
	"time"
)

// SweepDaemon periodically deletes expired refresh-token rows, the
// in-process counterpart to the schema's scheduled sweep function, in the
// same ticker/ctx/shutdownDone shape as jwtauth.SweepDaemon.
type SweepDaemon struct {
	store        *Store
	interval     time.Duration
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// NewSweepDaemon builds a daemon that sweeps expired refresh tokens from s
// every interval.
func NewSweepDaemon(s *Store, interval time.Duration, logger *slog.Logger) *SweepDaemon {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SweepDaemon{
		store:        s,
		interval:     interval,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

func (d *SweepDaemon) Name() string { return "store.sweep" }

// Start begins the periodic sweep in a background goroutine.
func (d *SweepDaemon) Start() error {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-d.ctx.Done():
				close(d.shutdownDone)
				return
			case <-ticker.C:
				n, err := d.store.SweepExpiredRefreshTokens(d.ctx)
				if err != nil {
					d.logger.Warn("store: refresh-token sweep failed", "error", err)
					continue
				}
				if n > 0 {
					d.logger.Info("store: swept expired refresh tokens", "count", n)
				}
			}
		}
	}()
	return nil
}

// Stop signals the sweep goroutine to exit and waits for it, or for ctx to
// expire first.
func (d *SweepDaemon) Stop(ctx context.Context) error {
	d.cancel()
	select {
	case <-d.shutdownDone:
		return nil
	case <-ctx.Done():
		d.logger.Warn("store: sweep daemon shutdown timed out")
		return ctx.Err()
	}
}
