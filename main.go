package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waterbarons/internal/catalog"
	"waterbarons/internal/config"
	"waterbarons/internal/server"
	"waterbarons/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path, empty to disable saving")
	flag.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "card catalog YAML, empty for the built-in set")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed, 0 for random")
	flag.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "round limit, 0 for none")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	var store server.Store
	if cfg.DBPath != "" {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer db.Close()
		store = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, cat, store).Start(ctx)
}
