package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ProphetRu/NovaChatServer/config"
)

func TestDaemon_RoutesAccessAndErrorToSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	accessPath := filepath.Join(dir, "access.log")
	errorPath := filepath.Join(dir, "error.log")

	provider := config.NewProvider(&config.Config{
		Logging: config.Logging{
			Level:     "debug",
			AccessLog: accessPath,
			ErrorLog:  errorPath,
		},
	})

	d := New(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	recordChan, _ := d.Chan()
	recordChan <- slog.NewRecord(time.Now(), slog.LevelInfo, "access: request", 0)
	recordChan <- slog.NewRecord(time.Now(), slog.LevelError, "handlers.SendMessage: boom", 0)

	// Give the drain goroutine a chance to process both records before stop.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	accessContent, err := os.ReadFile(accessPath)
	if err != nil {
		t.Fatalf("read access log: %v", err)
	}
	if !strings.Contains(string(accessContent), "access: request") {
		t.Errorf("access log missing expected line, got: %q", accessContent)
	}

	errorContent, err := os.ReadFile(errorPath)
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if !strings.Contains(string(errorContent), "boom") {
		t.Errorf("error log missing expected line, got: %q", errorContent)
	}
}

func TestDaemon_NameIsStable(t *testing.T) {
	d := New(config.NewProvider(&config.Config{}), nil)
	if d.Name() != "logging.Daemon" {
		t.Errorf("Name() = %q, want %q", d.Name(), "logging.Daemon")
	}
}
