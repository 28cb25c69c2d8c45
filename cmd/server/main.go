package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/event/kafka"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/handler/http"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/quickpolls/internal/config"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
	"github.com/vncsmyrnk/quickpolls/internal/core/services"
	"github.com/vncsmyrnk/quickpolls/internal/metrics"
)

type storage struct {
	polls  ports.PollRepository
	ledger ports.VoteLedger
	voters ports.VoterStore
	close  func() error
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, every caller is anonymous")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(cfg)
	if err != nil {
		slog.Error("failed to open storage", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer store.close()

	m := metrics.NewAdmissionMetrics("quickpolls")
	voteOpts := []services.VoteServiceOption{
		services.WithAdmissionRecorder(m),
		services.WithLogger(logger),
	}

	var cache ports.StatsCache
	if cfg.RedisURL != "" {
		c, err := redis.NewStatsCache(ctx, cfg.RedisURL, cfg.StatsCacheTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		cache = c
		voteOpts = append(voteOpts, services.WithStatsCache(c))
	}

	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		voteOpts = append(voteOpts, services.WithEventPublisher(p))
	}

	authService := services.NewAuthService(cfg.JWTSecret)
	resolver := services.NewIdentityResolver(store.voters)
	pollService := services.NewPollService(store.polls, cache)
	voteService := services.NewVoteService(store.polls, store.ledger, services.NewChoiceValidator(), voteOpts...)
	statsService := services.NewStatsService(store.polls, store.ledger, cache)

	handler := http.NewHandler(
		http.NewPollHandler(pollService, voteService, resolver),
		http.NewVoteHandler(voteService, resolver),
		http.NewResultHandler(pollService, statsService),
		http.NewIdentityMiddleware(authService, cfg.ClientIDCookie),
		m.Handler(),
		cfg.CORSOrigins,
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func openStorage(cfg *config.Config) (*storage, error) {
	if cfg.Store == config.StoreMemory {
		s := memory.New()
		return &storage{polls: s, ledger: s, voters: s, close: func() error { return nil }}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &storage{
		polls:  postgres.NewPollRepository(db),
		ledger: postgres.NewVoteRepository(db),
		voters: postgres.NewVoterRepository(db),
		close:  db.Close,
	}, nil
}
