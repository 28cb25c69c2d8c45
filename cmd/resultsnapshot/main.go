package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/quickpolls/internal/config"
	"github.com/vncsmyrnk/quickpolls/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	pg := cfg.Postgres
	timeout := flag.Duration("timeout", 5*time.Minute, "Job timeout")
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.DB, "db-name", pg.DB, "Database name")
	flag.Parse()

	db, err := sql.Open("postgres", pg.ConnString())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	pollRepo := postgres.NewPollRepository(db)
	snapshotService := services.NewSnapshotService(
		pollRepo,
		services.NewStatsService(pollRepo, postgres.NewVoteRepository(db), nil),
		postgres.NewPollResultRepository(db),
	)

	// Bound the run so a stuck query cannot hang the job.
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	slog.Info("starting result snapshot job")
	start := time.Now()

	if err := snapshotService.SnapshotAll(ctx); err != nil {
		slog.Error("result snapshot failed", "error", err)
		os.Exit(1)
	}

	slog.Info("result snapshot completed", "duration", time.Since(start))
}
