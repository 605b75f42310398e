package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kinetra/posestream/internal/config"
	"github.com/kinetra/posestream/internal/domain"
	"github.com/kinetra/posestream/internal/logging"
	"github.com/kinetra/posestream/internal/server"
	"github.com/kinetra/posestream/internal/simsource"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runSource(ctx context.Context, source domain.PoseSource, enqueue domain.EnqueueFunc) {
	go func() {
		if err := source.Run(ctx, enqueue); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Pose source stopped", "error", err)
		}
	}()
}

func runGracefulShutdown(srv *server.Server, cancelSource context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		cancelSource()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.WithError(err).Error("Server shutdown error")
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "addr", cfg.Addr(), "poll_interval", cfg.PollInterval)

	srv := server.NewServer(cfg, clock)

	sourceCtx, cancelSource := context.WithCancel(context.Background())
	defer cancelSource()

	if cfg.SimSource {
		slog.Info("Starting simulated pose source", "sample_rate", cfg.SimSampleRate)
		runSource(sourceCtx, simsource.NewGenerator(cfg.SimSampleRate, clock), srv.Enqueue)
	}

	done := runGracefulShutdown(srv, cancelSource)

	slog.Info("Server starting", "addr", cfg.Addr())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.WithError(err).Error("Server error")
		os.Exit(1)
	}

	<-done
}
