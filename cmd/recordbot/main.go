package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/bot"
	"github.com/guildstats/recordbot/internal/config"
	"github.com/guildstats/recordbot/internal/handlers"
	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/source"
	"github.com/guildstats/recordbot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ==========================================================================
	// Record source
	// ==========================================================================

	src, closeSource, err := openSource(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to open record source", "kind", cfg.SourceKind, "error", err)
	}
	defer closeSource()
	src = source.WithMetrics(src, cfg.SourceKind)

	var pinger handlers.Pinger
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sugar.Fatalw("Invalid REDIS_URL", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("Redis not reachable, snapshot cache will fall through", "error", err)
		}
		pinger = rdb
		src = source.NewCached(src, rdb, source.DefaultSnapshotKey, cfg.SnapshotTTL, logger)
		sugar.Infow("Snapshot cache configured", "ttl", cfg.SnapshotTTL)
	}

	records := logic.NewRecordService(src)

	// ==========================================================================
	// Command workers
	// ==========================================================================

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  cfg.CommandTimeout,
		Logger:      logger,
	})
	pool.Start(context.Background())

	// ==========================================================================
	// Discord
	// ==========================================================================

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		sugar.Fatalw("Failed to create Discord session", "error", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := bot.New(bot.Config{
		Discord:     session,
		Records:     records,
		Jobs:        pool,
		PageSize:    cfg.PageSize,
		PageTimeout: cfg.PageTimeout,
		Logger:      logger,
	})
	session.AddHandler(b.OnInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		sugar.Infow("Logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := session.Open(); err != nil {
		sugar.Fatalw("Failed to open Discord session", "error", err)
	}
	if err := bot.RegisterCommands(session, session.State.User.ID, cfg.DiscordGuildID); err != nil {
		sugar.Errorw("Failed to register slash commands", "guild", cfg.DiscordGuildID, "error", err)
	} else {
		sugar.Infow("Slash commands registered", "count", len(bot.Commands()), "guild", cfg.DiscordGuildID)
	}

	// ==========================================================================
	// Ops HTTP server
	// ==========================================================================

	var srv *http.Server
	if cfg.HTTPPort > 0 {
		h := handlers.New(handlers.Config{
			Records:  records,
			Queue:    pool,
			Redis:    pinger,
			PageSize: cfg.PageSize,
			Logger:   logger,
		})
		srv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      handlers.NewRouter(h, cfg.AllowedOrigins),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			sugar.Infow("Starting HTTP server", "port", cfg.HTTPPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sugar.Fatalw("HTTP server failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	sugar.Info("Shutting down...")

	if err := session.Close(); err != nil {
		sugar.Warnw("Failed to close Discord session", "error", err)
	}
	pool.Stop()
	b.Close()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server forced to shutdown", "error", err)
		}
	}

	sugar.Info("Shutdown complete")
}

// openSource builds the configured record source and its cleanup func
func openSource(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (source.Source, func(), error) {
	switch cfg.SourceKind {
	case config.SourceGoogle:
		g, err := source.NewGoogleSheets(ctx, source.GoogleConfig{
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			SpreadsheetID:   cfg.SpreadsheetID,
			SpreadsheetName: cfg.SpreadsheetName,
			Concurrency:     cfg.SheetConcurrency,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Infow("Google Sheets source ready", "spreadsheet", g.SpreadsheetID(), "name", cfg.SpreadsheetName)
		return g, func() {}, nil

	case config.SourceWorkbook:
		if _, err := os.Stat(cfg.WorkbookPath); err != nil {
			return nil, nil, fmt.Errorf("workbook: %w", err)
		}
		logger.Infow("Workbook source ready", "path", cfg.WorkbookPath)
		return source.NewWorkbook(cfg.WorkbookPath), func() {}, nil

	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("Postgres source ready")
		return source.NewPostgres(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
}
