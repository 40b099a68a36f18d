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

	"linkstate/linkstate/internal/config"
	"linkstate/linkstate/internal/db"
	httpserver "linkstate/linkstate/internal/http"
	"linkstate/linkstate/internal/repo"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatal(err)
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		stop()
		log.Fatal(err)
	}
}

// run serves until ctx is cancelled. A listener that fails to start is
// returned as an error.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	conn, err := db.Open(ctx, cfg.DSN(), cfg.MongoDatabase)

	if err != nil {
		return err
	}

	defer conn.Close(context.Background())

	links, err := repo.New(conn)

	if err != nil {
		return err
	}

	if err := links.Migrate(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.BindAddr(),
		Handler:      httpserver.NewServer(cfg, links, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "store", conn.Dialect, "base_url", cfg.BaseURL)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	return nil
}
