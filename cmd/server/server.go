package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
)

// Server owns the subsystems and the HTTP listener serving the mounted modules.
type Server struct {
	infra           *infrastructure.Infrastructure
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router, err := modules.Router(infra)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info("server initialized", "addr", cfg.Server.Addr(), "version", cfg.Version)

	return &Server{
		infra: infra,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
			WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
			IdleTimeout:       cfg.Server.IdleTimeoutDuration(),
		},
		logger:          infra.Logger.With("system", "http"),
		shutdownTimeout: cfg.Server.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts every subsystem and serves until ctx is cancelled or a startup
// hook fails, then shuts down within timeout. A startup failure is returned
// joined with any shutdown error.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.listen(); err != nil {
		return errors.Join(err, s.infra.Lifecycle.Shutdown(timeout))
	}

	started := make(chan error, 1)
	go func() {
		s.infra.Lifecycle.WaitForStartup()
		started <- s.infra.Lifecycle.Err()
	}()

	var startErr error
	select {
	case <-ctx.Done():
		s.infra.Logger.Info("shutdown signal received")
	case startErr = <-started:
		if startErr == nil {
			s.infra.Logger.Info("all subsystems ready")
			<-ctx.Done()
			s.infra.Logger.Info("shutdown signal received")
			break
		}
		s.infra.Logger.Error("subsystem startup failed", "error", startErr)
	}

	s.infra.Logger.Info("initiating shutdown")
	return errors.Join(startErr, s.infra.Lifecycle.Shutdown(timeout))
}

// listen binds before returning so an occupied port fails Run directly.
func (s *Server) listen() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}

	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc := s.infra.Lifecycle
	lc.OnShutdown("http", func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
			return
		}
		s.logger.Info("server shutdown complete")
	})
	return nil
}
