package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kdrivas1989/video-trimmer/internal/api"
	"github.com/kdrivas1989/video-trimmer/internal/asset"
	"github.com/kdrivas1989/video-trimmer/internal/config"
	"github.com/kdrivas1989/video-trimmer/internal/logging"
	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
	"github.com/kdrivas1989/video-trimmer/internal/stream"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Optional .env in the working directory; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting video trimmer", "version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()))

	locator := asset.Locator{
		UploadDir:  cfg.UploadDir(),
		OutputDir:  cfg.OutputDir(),
		PreviewDir: cfg.PreviewDir(),
	}
	if err := locator.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	// Job history is advisory: a broken database disables it but never
	// blocks trimming.
	var jobs store.Repository
	if database, err := store.New(cfg.DBPath(), logger); err != nil {
		logger.Warn("job history disabled, database unavailable", "error", err)
	} else {
		defer database.Close()
		jobs = store.NewRepository(database.Conn())
	}

	caps := media.Doctor(cfg.FFmpegPath(), cfg.FFprobePath())
	var engine media.Engine
	if caps.Available() {
		eng, err := media.NewFFmpeg(cfg.FFmpegPath(), cfg.FFprobePath(), logging.WithComponent(logger, "media"))
		if err != nil {
			return fmt.Errorf("failed to initialize media engine: %w", err)
		}
		engine = eng
	} else {
		logger.Warn("ffmpeg/ffprobe not found, probing and encoding disabled",
			"has_ffmpeg", caps.HasFFmpeg, "has_ffprobe", caps.HasFFprobe)
		engine = media.NewStub(logging.WithComponent(logger, "media"))
	}

	registry := asset.NewRegistry(locator, logging.WithComponent(logger, "registry"))
	assets := asset.NewService(registry, locator, engine, jobs,
		logging.WithComponent(logger, "asset"), asset.Options{
			TrimBufferSec:      cfg.TrimBufferSec(),
			PreviewMaxHeight:   cfg.PreviewMaxHeight(),
			PreviewBitrateKbps: cfg.PreviewBitrateKbps(),
			EncodePreset:       cfg.EncodePreset(),
			ProbeTimeout:       cfg.ProbeTimeout(),
			EncodeTimeout:      cfg.EncodeTimeout(),
		})

	streamer := stream.NewServer(logging.WithComponent(logger, "stream"))

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Assets:         assets,
		Streamer:       streamer,
		Jobs:           jobs,
		Engine:         &caps,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	fmt.Printf("\n=== Video Trimmer ===\nOpen http://%s in your browser\n\n", apiServer.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
