// Package logging wires log/slog through a batched, multi-sink writer:
// console, an access-log file, and an error-log file, each independently
// lockable, with the level threshold read from config.Logging.Level.
package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ProphetRu/NovaChatServer/config"
)

// BatchHandler is a slog.Handler that forwards records onto a channel for
// the Daemon to drain and route, rather than writing synchronously on the
// calling goroutine.
type BatchHandler struct {
	configProvider *config.Provider
	recordChan     chan<- slog.Record
	daemonCtx      context.Context
	attrs          []slog.Attr
}

// NewBatchHandler builds a handler over recordChan. Panics if any argument
// is nil: a handler without a config, channel, or daemon context to signal
// shutdown is a construction bug.
func NewBatchHandler(configProvider *config.Provider, recordChan chan<- slog.Record, daemonCtx context.Context) *BatchHandler {
	if configProvider == nil {
		panic("logging: configProvider cannot be nil")
	}
	if recordChan == nil {
		panic("logging: recordChan cannot be nil")
	}
	if daemonCtx == nil {
		panic("logging: daemonCtx cannot be nil")
	}
	return &BatchHandler{configProvider: configProvider, recordChan: recordChan, daemonCtx: daemonCtx}
}

// Enabled consults the live config so a level change from a config reload
// takes effect without rebuilding the logger.
func (h *BatchHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= ParseLevel(h.configProvider.Get().Logging.Level)
}

// Handle forwards r onto the channel, dropping it (with an error return,
// never a panic) if the daemon is shutting down or the channel is full.
func (h *BatchHandler) Handle(_ context.Context, r slog.Record) error {
	if h.daemonCtx.Err() != nil {
		return fmt.Errorf("logging: daemon shutting down, dropping record")
	}
	if len(h.attrs) > 0 {
		r.AddAttrs(h.attrs...)
	}
	select {
	case h.recordChan <- r:
		return nil
	default:
		return fmt.Errorf("logging: channel full, dropping record")
	}
}

func (h *BatchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &BatchHandler{configProvider: h.configProvider, recordChan: h.recordChan, daemonCtx: h.daemonCtx, attrs: newAttrs}
}

// WithGroup is a no-op: the handler never nests attributes into groups.
func (h *BatchHandler) WithGroup(name string) slog.Handler {
	return h
}
