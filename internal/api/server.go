package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kdrivas1989/video-trimmer/internal/asset"
	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
	"github.com/kdrivas1989/video-trimmer/internal/stream"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port           int
	Assets         *asset.Service
	Streamer       *stream.Server
	Jobs           store.Repository
	Engine         *media.Capabilities
	MaxUploadBytes int64
	Logger         *slog.Logger
	StartTime      time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler: router,
			// WriteTimeout stays 0: encodes and large streams outlive any
			// sane fixed deadline.
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func formatDuration(sec float64) string {
	return asset.FormatTimestamp(sec)
}
