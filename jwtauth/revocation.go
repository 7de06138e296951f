package jwtauth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// revokedEntry tracks the expiry of a revoked jti, so the sweep daemon can
// evict it once it could no longer have been valid anyway.
type revokedEntry struct {
	expiresAt time.Time
}

// RevocationSet is a thread-safe process-local set of revoked access-token
// jtis. Entries expire naturally once their token would have anyway, so a
// background sweep keeps the set from growing without bound.
type RevocationSet struct {
	jtis sync.Map // map[string]revokedEntry
}

// NewRevocationSet returns an empty revocation set.
func NewRevocationSet() *RevocationSet {
	return &RevocationSet{}
}

// Revoke marks jti as revoked until expiresAt.
func (r *RevocationSet) Revoke(jti string, expiresAt time.Time) {
	r.jtis.Store(jti, revokedEntry{expiresAt: expiresAt})
}

// IsRevoked reports whether jti is present and its recorded expiry is still
// in the future; an entry past its expiry reads as not-revoked even if the
// sweep daemon hasn't evicted it yet.
func (r *RevocationSet) IsRevoked(jti string) bool {
	value, exists := r.jtis.Load(jti)
	if !exists {
		return false
	}
	return time.Now().Before(value.(revokedEntry).expiresAt)
}

// sweep removes entries whose expiresAt has already passed.
func (r *RevocationSet) sweep(now time.Time) {
	r.jtis.Range(func(key, value any) bool {
		entry := value.(revokedEntry)
		if now.After(entry.expiresAt) {
			r.jtis.Delete(key)
		}
		return true
	})
}

// SweepDaemon periodically evicts expired entries from a RevocationSet.
type SweepDaemon struct {
	set          *RevocationSet
	interval     time.Duration
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// NewSweepDaemon builds a daemon that sweeps set every interval.
func NewSweepDaemon(set *RevocationSet, interval time.Duration, logger *slog.Logger) *SweepDaemon {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SweepDaemon{
		set:          set,
		interval:     interval,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

// Name identifies this daemon for orchestrator logging.
func (d *SweepDaemon) Name() string { return "jwtauth.sweep" }

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
				d.set.sweep(time.Now())
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
		d.logger.Warn("jwtauth sweep daemon shutdown timed out")
		return ctx.Err()
	}
}
