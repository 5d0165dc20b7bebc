// main.go — jobly API server
// ============================================================
// Wires the pieces together:
//
//  1. Configuration (defaults, YAML file, .env, environment)
//  2. Structured logger
//  3. DB with logging and statistics hooks
//  4. Repositories and handlers
//  5. HTTP server with graceful shutdown
// ============================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixelready/express-jobly/api"
	"github.com/pixelready/express-jobly/config"
	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/repo"

	// Registers "sqlite3" for DB_DRIVER=sqlite3 in local runs.
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $JOBLY_CONFIG)")
	flag.Parse()

	// ── 1. Configuration ─────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// ── 2. Structured logger ─────────────────────────────────────────────
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── 3. DB ────────────────────────────────────────────────────────────
	stats := &db.QueryStats{SlowThreshold: cfg.Database.SlowQueryThreshold}
	pool := cfg.Database.Pool(
		db.NewLogHook(db.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
			LogArgs:            cfg.Database.LogArgs,
		}),
		db.NewStatsHook(stats),
	)

	var database *db.DB
	if cfg.Database.URL != "" {
		database, err = db.Open(pool)
	} else {
		database, err = db.OpenWithDriver(cfg.Database.Driver, cfg.Database.DriverOptions(), pool)
	}
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer database.Close()

	slog.Info("database connected",
		"driver", cfg.Database.Driver,
		"dialect", database.Dialect().String(),
		"open", database.Stats().OpenConnections,
	)

	// ── 4. Repositories and handlers ─────────────────────────────────────
	companies := repo.NewCompanyRepo(database)
	jobs := repo.NewJobRepo(database)
	retry := cfg.Retry.DB()

	app := api.NewApp(&api.Handlers{
		Companies: api.NewCompanyHandler(companies, jobs, retry),
		Jobs:      api.NewJobHandler(jobs, retry),
		Health:    api.NewHealthHandler(database, stats),
	}, api.RouterConfig{
		SecretKey: cfg.Auth.SecretKey,
		Logger:    logger,
	})

	// ── 5. Serve until signalled ─────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr())
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fatalf("server: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}

	snap := stats.Snapshot()
	slog.Info("query stats", "total", snap.Total, "failed", snap.Failed, "slow", snap.Slow)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
