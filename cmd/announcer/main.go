package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/example/game-announcer/internal/announcement"
	"github.com/example/game-announcer/internal/application"
	"github.com/example/game-announcer/internal/config"
	"github.com/example/game-announcer/internal/delivery"
	"github.com/example/game-announcer/internal/delivery/telegram"
	httptransport "github.com/example/game-announcer/internal/http"
	"github.com/example/game-announcer/internal/logging"
	"github.com/example/game-announcer/internal/persistence/sqlite"
	"github.com/example/game-announcer/internal/publication"
	"github.com/example/game-announcer/internal/recurrence"
	"github.com/example/game-announcer/internal/roster"
	"github.com/example/game-announcer/internal/scheduler"
)

const usage = `usage:
  announcer              run the announcer
  announcer hash-token T print the argon2id hash of admin token T`

func main() {
	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1:], os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("announcer stopped with error", "error", err)
		os.Exit(1)
	}
}

func runCommand(args []string, stdout io.Writer) error {
	switch args[0] {
	case "hash-token":
		if len(args) != 2 || args[1] == "" {
			return errors.New(usage)
		}
		hash, err := application.HashAdminToken(args[1], application.DefaultArgon2idParams)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, hash)
		return err
	default:
		return errors.New(usage)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramEndpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return err
	}
	channel, err := telegram.NewChannel(bot, cfg.Channel)
	if err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	a, err := newApp(cfg, appDeps{Channel: channel, Locker: locker, Logger: logger})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Startup(ctx); err != nil {
		return err
	}
	go a.RunMaintenance(ctx, cfg.MaintenanceInterval)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("announcer API listening", "addr", server.Addr, "channel", cfg.Channel)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}

// newLocker returns a redis-backed locker when an address is configured and an
// in-process one otherwise.
func newLocker(ctx context.Context, cfg config.Config, logger *slog.Logger) (roster.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return roster.NewKeyedMutex(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	locker := roster.NewRedisLocker(client, "announcer:roster:", roster.WithLockLostHook(func(key string, err error) {
		logger.Warn("roster lock lost", "key", key, "error", err)
	}))
	closer := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
	return locker, closer, nil
}

type appDeps struct {
	Channel     delivery.Channel
	Locker      roster.Locker
	Now         func() time.Time
	NewTimer    scheduler.TimerFunc
	IDGenerator func() string
	Logger      *slog.Logger
}

type app struct {
	storage     *sqlite.Storage
	executor    *scheduler.TimerExecutor
	scheduler   *scheduler.Scheduler
	games       *application.GameService
	coordinator *publication.Coordinator
	handler     http.Handler
	logger      *slog.Logger
}

func newApp(cfg config.Config, deps appDeps) (*app, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	idGenerator := deps.IDGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	verifier, err := application.NewAdminTokenVerifier(cfg.AdminTokenHash)
	if err != nil {
		return nil, fmt.Errorf("invalid ANNOUNCER_ADMIN_TOKEN_HASH: %w", err)
	}

	var player func(http.Handler) http.Handler
	if cfg.GatewayTokenHash != "" {
		gateway, err := application.NewAdminTokenVerifier(cfg.GatewayTokenHash)
		if err != nil {
			return nil, fmt.Errorf("invalid ANNOUNCER_GATEWAY_TOKEN_HASH: %w", err)
		}
		player = httptransport.RequireGatewayToken(gateway, logger)
	} else {
		logger.Warn("player endpoints accept any caller; expose them only behind a trusted gateway")
	}

	storage, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLitePath), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		return nil, err
	}

	coordinator := publication.NewCoordinator(
		storage.Occurrences,
		storage.Registrations,
		announcement.NewRenderer(loc),
		deps.Channel,
		logger,
	)
	executor := scheduler.NewTimerExecutorWithClock(now, deps.NewTimer)
	sched := scheduler.NewScheduler(executor, storage.Occurrences, func(ctx context.Context, occurrenceID string) error {
		_, err := coordinator.Publish(ctx, occurrenceID)
		return err
	}, now, logger)

	games := application.NewGameService(application.GameServiceDeps{
		Occurrences:     storage.Occurrences,
		Templates:       storage.Templates,
		Participants:    storage.Participants,
		Roster:          roster.NewEngine(storage.Registrations, deps.Locker, idGenerator, now),
		Publisher:       coordinator,
		Scheduler:       sched,
		Calculator:      recurrence.NewCalculator(loc),
		DefaultCapacity: cfg.DefaultCapacity,
		IDGenerator:     idGenerator,
		Now:             now,
		Logger:          logger,
	})
	participants := application.NewParticipantServiceWithLogger(storage.Participants, now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Games:        httptransport.NewGameHandler(games, coordinator, loc, logger),
		Participants: httptransport.NewParticipantHandler(participants, logger),
		Admin:        httptransport.RequireAdminToken(verifier, logger),
		Player:       player,
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	return &app{
		storage:     storage,
		executor:    executor,
		scheduler:   sched,
		games:       games,
		coordinator: coordinator,
		handler:     handler,
		logger:      logger,
	}, nil
}

// Startup archives started games, spawns template games and re-enqueues
// pending publications.
func (a *app) Startup(ctx context.Context) error {
	if _, err := a.games.ArchivePastOccurrences(ctx); err != nil {
		return fmt.Errorf("startup archive failed: %w", err)
	}
	if _, err := a.games.SpawnFromTemplates(ctx); err != nil {
		return fmt.Errorf("startup spawn failed: %w", err)
	}
	if _, err := a.scheduler.Recover(ctx); err != nil {
		return fmt.Errorf("startup recovery failed: %w", err)
	}
	return nil
}

// RunMaintenance archives and spawns on every tick until ctx ends.
func (a *app) RunMaintenance(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.maintain(ctx)
		}
	}
}

func (a *app) maintain(ctx context.Context) {
	if _, err := a.games.ArchivePastOccurrences(ctx); err != nil {
		a.logger.ErrorContext(ctx, "maintenance archive failed", "error", err)
	}
	if _, err := a.games.SpawnFromTemplates(ctx); err != nil {
		a.logger.ErrorContext(ctx, "maintenance spawn failed", "error", err)
	}
}

func (a *app) Close() {
	a.executor.Stop()
	if err := a.storage.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}
