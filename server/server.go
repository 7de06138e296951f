package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ProphetRu/NovaChatServer/config"
)

// Daemon is the contract for background components the orchestrator
// manages through the process lifecycle.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

// GracefulShutdownTimeout bounds how long the orchestrator waits for
// in-flight sessions and daemons to drain before forcing a stop.
const GracefulShutdownTimeout = 30 * time.Second

// Server owns the TLS listener, the application handler, and every
// background Daemon, and drives their combined start/stop lifecycle (C9).
type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	daemons        []Daemon
}

// NewServer constructs an orchestrator. Daemons are registered via AddDaemon.
func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		daemons:        make([]Daemon, 0),
	}
}

// AddDaemon registers a background component for lifecycle management.
func (s *Server) AddDaemon(d Daemon) {
	if d == nil {
		s.logger.Warn("server: attempted to add a nil daemon")
		return
	}
	s.logger.Info("server: registered daemon", "daemon", d.Name())
	s.daemons = append(s.daemons, d)
}

// Run builds the TLS listener, wraps the handler with access logging and
// the worker-limit middleware, starts every daemon, and blocks until a
// termination signal or an unrecoverable server error arrives, then shuts
// down gracefully. It calls os.Exit and does not return under normal use.
func (s *Server) Run() {
	cfg := s.configProvider.Get()

	tlsConfig, err := BuildTLSConfig(cfg.SSL)
	if err != nil {
		s.logger.Error("server: failed to build TLS config", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	rawListener, err := net.Listen("tcp", addr)
	if err != nil {
		s.logger.Error("server: failed to bind listener", "addr", addr, "error", err)
		os.Exit(1)
	}
	listener := tls.NewListener(NewListener(rawListener), tlsConfig)

	handler := AccessLogMiddleware(s.logger, cfg.Logging.LogAccess,
		WorkerLimitMiddleware(cfg.Server.Threads, s.handler))

	httpServer := &http.Server{
		Handler:      handler,
		TLSConfig:    tlsConfig,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server: starting HTTPS listener", "addr", addr, "threads", cfg.Server.Threads)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	s.logger.Info("server: starting daemons")
	var startupFailed bool
	for _, d := range s.daemons {
		if err := d.Start(); err != nil {
			s.logger.Error("server: daemon failed to start", "daemon", d.Name(), "error", err)
			serverErr <- fmt.Errorf("daemon %q failed to start: %w", d.Name(), err)
			startupFailed = true
			break
		}
		s.logger.Info("server: daemon started", "daemon", d.Name())
	}
	if !startupFailed {
		s.logger.Info("server: all daemons started")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP)

	running := true
	for running {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGINT, syscall.SIGQUIT:
				s.logger.Info("server: received termination signal", "signal", sig)
				running = false
			case syscall.SIGHUP:
				s.logger.Info("server: received SIGHUP (config reload not wired to a live watcher)")
			}
		case err := <-serverErr:
			s.logger.Error("server: unrecoverable error, shutting down", "error", err)
			running = false
		}
	}
	signal.Stop(sigChan)
	close(sigChan)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	shutdownGroup, _ := errgroup.WithContext(shutdownCtx)
	shutdownGroup.Go(func() error {
		s.logger.Info("server: shutting down HTTPS listener")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server: listener shutdown error", "error", err)
			return err
		}
		return nil
	})

	for _, d := range s.daemons {
		daemon := d
		shutdownGroup.Go(func() error {
			s.logger.Info("server: stopping daemon", "daemon", daemon.Name())
			if err := daemon.Stop(shutdownCtx); err != nil {
				s.logger.Error("server: daemon failed to stop cleanly", "daemon", daemon.Name(), "error", err)
				return fmt.Errorf("daemon %q failed to stop: %w", daemon.Name(), err)
			}
			return nil
		})
	}

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("server: error during shutdown", "error", err)
		os.Exit(1)
	}

	s.logger.Info("server: stopped gracefully")
	os.Exit(0)
}
