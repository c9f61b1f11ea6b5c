package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/WoKonings/ft-transcendence/internal/config"
	"github.com/WoKonings/ft-transcendence/internal/game"
	"github.com/WoKonings/ft-transcendence/internal/netwrk"
	"github.com/WoKonings/ft-transcendence/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("opening store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	hub := netwrk.NewHub(logger, store)
	engine := game.NewEngine(logger, store, hub, hub, game.WithWinScore(cfg.WinScore))
	hub.Bind(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := game.NewLoop(engine, logger)
	go loop.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/game", hub)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.Info("transcendence game server listening", slog.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch name {
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
