package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/armsx2/site-api/internal/config"
	"github.com/armsx2/site-api/internal/email"
	"github.com/armsx2/site-api/internal/github"
	"github.com/armsx2/site-api/internal/oauthstate"
	"github.com/armsx2/site-api/internal/server"
	"github.com/armsx2/site-api/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Data store ---
	st := store.New(cfg.DataDir, logger)
	if err := st.Check(ctx); err != nil {
		return fmt.Errorf("preparing data directory: %w", err)
	}
	logger.Info("using data directory", "dir", cfg.DataDir)

	checks := map[string]server.Checker{
		"store": st,
	}

	// --- OAuth state store ---
	var states oauthstate.Store = oauthstate.NewMemory()
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		states = oauthstate.NewRedis(rdb)
		checks["redis"] = redisChecker{rdb}
		logger.Info("oauth state store backed by redis")
	}

	// --- External services ---
	gh := github.NewClient(github.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		CallbackURL:  cfg.GitHubCallbackURL,
		Repo:         cfg.GitHubRepo,
	})
	if !gh.Configured() {
		logger.Warn("github oauth credentials not set; identity handshake disabled")
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	// --- HTTP server ---
	srv := server.New(server.Deps{
		Config: cfg,
		Logger: logger,
		Store:  st,
		GitHub: gh,
		States: states,
		Mailer: mailer,
		Checks: checks,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// redisChecker adapts *redis.Client to server.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
