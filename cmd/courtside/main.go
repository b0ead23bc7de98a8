// Command courtside runs the assisted scorekeeping service: a live AI
// session watching the court, the authoritative game-state store, and the
// HTTP boundary the scoreboard UI talks to.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside-ai/courtside/internal/config"
	"github.com/courtside-ai/courtside/internal/game"
	"github.com/courtside-ai/courtside/internal/media"
	"github.com/courtside-ai/courtside/internal/server"
	"github.com/courtside-ai/courtside/internal/session"
	"github.com/courtside-ai/courtside/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("courtside exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Resume the last autosaved game when one exists; otherwise seed the
	// demo scoreboard.
	initial, err := db.Load(storage.DefaultSlot)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("ignoring saved game", "error", err)
		}
		initial = game.DemoState()
	} else {
		logger.Info("resumed saved game", "home", initial.Home.Name, "guest", initial.Guest.Name)
	}

	store := game.NewStore(initial,
		game.WithSaver(db),
		game.WithLogger(logger),
	)
	defer store.Close()

	manager := session.NewManager(session.ManagerConfig{
		Dialer:      &session.GeminiDialer{APIKey: cfg.GeminiAPIKey, Model: cfg.LiveModel},
		Store:       store,
		Logger:      logger,
		VideoSource: media.VideoSource(cfg.VideoSource),
		FrameRate:   cfg.FrameRate,
	})
	defer manager.Stop()

	srv := server.New(server.Config{
		Store:    store,
		Sessions: manager,
		Analyzer: &session.GeminiAnalyzer{APIKey: cfg.GeminiAPIKey, Model: cfg.AnalysisModel},
		Persist:  db,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("courtside listening", "addr", cfg.Addr, "video", cfg.VideoSource)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
