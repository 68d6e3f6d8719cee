package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/schooner-time/timeclock/internal/app"
	"github.com/schooner-time/timeclock/internal/auth"
	"github.com/schooner-time/timeclock/internal/observability"
	"github.com/schooner-time/timeclock/internal/platform/cache"
	"github.com/schooner-time/timeclock/internal/platform/db"
	"github.com/schooner-time/timeclock/internal/shared"
	"github.com/schooner-time/timeclock/internal/timeclock"
	"github.com/schooner-time/timeclock/internal/users"
	"github.com/schooner-time/timeclock/jobs"
)

const devPassword = "timeclock-dev"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	figure.NewFigure("timeclock", "cybermedium", true).Print()
	fmt.Println()

	var (
		userRepo  users.Repository
		entryRepo timeclock.Repository
	)
	switch cfg.StoreBackend {
	case app.StoreBackendMemory:
		if cfg.IsProduction() {
			logger.Error("memory store is not allowed in production")
			os.Exit(1)
		}
		memUsers, err := seedMemoryUsers()
		if err != nil {
			logger.Error("seed memory users", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Warn("using in-memory store; data is lost on exit",
			slog.String("manager", "manager@timeclock.local"),
			slog.String("employee", "employee@timeclock.local"),
		)
		userRepo = memUsers
		entryRepo = timeclock.NewMemoryRepository(memUsers)
	default:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("migrate schema", slog.Any("error", err))
			os.Exit(1)
		}
		userRepo = users.NewRepository(pool)
		entryRepo = timeclock.NewRepository(pool)
	}

	var locker shared.Locker = shared.NewKeyedMutex()
	if cfg.LockBackend == app.LockBackendRedis {
		redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		locker = shared.NewRedisLocker(redisClient, cfg.LockTTL)
	}

	gateCfg := auth.GateConfig{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}
	gate, err := auth.NewGate(gateCfg)
	if err != nil {
		logger.Error("init gate", slog.Any("error", err))
		os.Exit(1)
	}
	issuer, err := auth.NewIssuer(gateCfg, cfg.JWTTTL)
	if err != nil {
		logger.Error("init issuer", slog.Any("error", err))
		os.Exit(1)
	}
	guard := auth.Middleware{Gate: gate, Logger: logger}

	metrics := observability.NewMetrics()

	authHandler := auth.NewHandler(logger, auth.NewService(userRepo, issuer))
	clockService := timeclock.NewService(entryRepo, locker, logger)
	clockService.SetObserver(metrics)
	clockHandler := timeclock.NewHandler(logger, clockService, guard)
	usersHandler := users.NewHandler(logger, users.NewService(userRepo), guard)

	var inspector *asynq.Inspector
	if cfg.StoreBackend == app.StoreBackendPostgres {
		inspector = asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
	}
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		TimeclockHandler: clockHandler,
		UsersHandler:     usersHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("store", cfg.StoreBackend),
			slog.String("locks", cfg.LockBackend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// seedMemoryUsers creates one manager and one employee sharing devPassword.
func seedMemoryUsers() (*users.MemoryRepository, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(devPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	repo := users.NewMemoryRepository()
	seed := []users.User{
		{FirstName: "Morgan", LastName: "Reyes", Email: "manager@timeclock.local", Role: shared.RoleManager},
		{FirstName: "Sam", LastName: "Okafor", Email: "employee@timeclock.local", Role: shared.RoleEmployee},
	}
	for _, u := range seed {
		u.PasswordHash = string(hash)
		if _, err := repo.Add(u); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
