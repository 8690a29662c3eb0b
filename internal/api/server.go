package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/statuswatch/status-plane/internal/config"
)

// Server owns the HTTP listener. Start returns immediately; listener
// failures surface on Err.
type Server struct {
	logger zerolog.Logger
	server *http.Server
	errCh  chan error
}

func NewServer(cfg config.HTTP, handler *Handler, logger zerolog.Logger) *Server {
	mux := addMiddleware(logger, newRouter(handler))
	return &Server{
		logger: logger,
		errCh:  make(chan error, 1),
		server: &http.Server{
			Handler: mux,
			Addr:    fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port),
		},
	}
}

func (s *Server) Start() {
	go func() {
		s.logger.Info().
			Str("host_port", s.server.Addr).
			Msg("starting http server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
}

func (s *Server) Err() <-chan error {
	return s.errCh
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error while shutting down http server: %w", err)
	}
	return nil
}
