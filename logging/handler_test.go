package logging

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ProphetRu/NovaChatServer/config"
)

func newTestConfigProvider(level string) *config.Provider {
	return config.NewProvider(&config.Config{
		Logging: config.Logging{Level: level},
	})
}

func TestNewBatchHandler_PanicsOnNilArgs(t *testing.T) {
	provider := newTestConfigProvider("info")
	recordChan := make(chan slog.Record, 1)
	ctx := context.Background()

	testCases := []struct {
		name          string
		provider      *config.Provider
		recordChan    chan<- slog.Record
		ctx           context.Context
		panicContains string
	}{
		{"nil config provider", nil, recordChan, ctx, "configProvider cannot be nil"},
		{"nil record channel", provider, nil, ctx, "recordChan cannot be nil"},
		{"nil daemon context", provider, recordChan, nil, "daemonCtx cannot be nil"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected a panic, got none")
				}
				if msg, ok := r.(string); !ok || !strings.Contains(msg, tc.panicContains) {
					t.Errorf("expected panic to contain %q, got %q", tc.panicContains, r)
				}
			}()
			_ = NewBatchHandler(tc.provider, tc.recordChan, tc.ctx)
		})
	}
}

func TestBatchHandler_Enabled(t *testing.T) {
	provider := newTestConfigProvider("info")
	handler := NewBatchHandler(provider, make(chan slog.Record, 1), context.Background())

	testCases := []struct {
		name    string
		level   slog.Level
		enabled bool
	}{
		{"below threshold", slog.LevelDebug, false},
		{"at threshold", slog.LevelInfo, true},
		{"above threshold", slog.LevelWarn, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := handler.Enabled(context.Background(), tc.level); got != tc.enabled {
				t.Errorf("Enabled() = %v, want %v", got, tc.enabled)
			}
		})
	}
}

func TestBatchHandler_Handle(t *testing.T) {
	provider := newTestConfigProvider("info")
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)

	t.Run("successful send", func(t *testing.T) {
		recordChan := make(chan slog.Record, 1)
		handler := NewBatchHandler(provider, recordChan, context.Background())

		if err := handler.Handle(context.Background(), record); err != nil {
			t.Fatalf("Handle returned an unexpected error: %v", err)
		}
		select {
		case rec := <-recordChan:
			if rec.Message != "test message" {
				t.Errorf("got message %q, want %q", rec.Message, "test message")
			}
		default:
			t.Fatal("handler did not forward the record")
		}
	})

	t.Run("channel full", func(t *testing.T) {
		recordChan := make(chan slog.Record) // unbuffered: always full
		handler := NewBatchHandler(provider, recordChan, context.Background())
		if err := handler.Handle(context.Background(), record); err == nil {
			t.Fatal("expected an error for a full channel, got nil")
		}
	})

	t.Run("daemon shutting down", func(t *testing.T) {
		recordChan := make(chan slog.Record, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		handler := NewBatchHandler(provider, recordChan, ctx)
		if err := handler.Handle(context.Background(), record); err == nil {
			t.Fatal("expected an error once the daemon context is done, got nil")
		}
	})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"trace", slog.LevelDebug - 4},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"fatal", slog.LevelError + 4},
		{"unknown", slog.LevelInfo},
	}
	for _, tc := range testCases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
