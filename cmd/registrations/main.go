// Package main реализует точку входа сервиса регистраций.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kioskreg/internal/registrations/adapters/grpc"
	httpServer "kioskreg/internal/registrations/adapters/http"
	"kioskreg/internal/registrations/adapters/memory"
	"kioskreg/internal/registrations/adapters/postgres"
	redisAdapter "kioskreg/internal/registrations/adapters/redis"
	"kioskreg/internal/registrations/adapters/sheets"
	"kioskreg/internal/registrations/app"
	"kioskreg/internal/registrations/config"
	"kioskreg/internal/registrations/db"
	"kioskreg/internal/registrations/metrics"
	"kioskreg/internal/registrations/ports/repositories"
	"kioskreg/internal/registrations/ports/services"
	pkgredis "kioskreg/pkg/db/redis"
	"kioskreg/pkg/logger"
	"kioskreg/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "REGISTRATIONS_LOGGER_MODE"
	EnvLoggerLevel = "REGISTRATIONS_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrCreateExporter       = "failed to create spreadsheet exporter"
	ErrStartGRPC            = "failed to start gRPC health server"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "registrations service started"
	LogServiceShutdownDone = "registrations service shutdown complete"
	LogInitStorage         = "initializing storage"
	LogInitIdempotency     = "initializing idempotency store"
	LogInitExporter        = "initializing spreadsheet exporter"
	LogWaitingExports      = "waiting for pending spreadsheet exports"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		var hooks []func(context.Context) error

		log.Info(ctx, LogInitStorage, zap.String("driver", cfg.Storage.Driver))
		var (
			repo   repositories.RegistrationRepository
			pinger services.Pinger
		)
		if cfg.Storage.UseMemory() {
			repo = memory.NewRegistrationRepository()
		} else {
			database, err := db.New(ctx, &cfg.Postgres)
			if err != nil {
				log.Error(ctx, ErrInitDB, zap.Error(err))
				exitCode = 1
				return
			}
			repo = postgres.NewRegistrationRepository(database.Pool())
			pinger = database
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			})
		}

		log.Info(ctx, LogInitIdempotency, zap.Bool("redis", cfg.Redis.Enabled))
		var idempotency services.IdempotencyStore
		if cfg.Redis.Enabled {
			redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
				Host:           cfg.Redis.Host,
				Port:           cfg.Redis.Port,
				Password:       cfg.Redis.Password,
				DB:             cfg.Redis.DB,
				PoolSize:       cfg.Redis.PoolSize,
				ConnectTimeout: cfg.Redis.ConnectTimeout,
				Timeout:        cfg.Redis.Timeout,
			})
			if err != nil {
				log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
				exitCode = 1
				return
			}
			idempotency = redisAdapter.NewIdempotencyStore(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.IdempotencyTTL)
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingRedis)
				return redisClient.Close()
			})
		} else {
			idempotency = memory.NewIdempotencyStore(cfg.Redis.IdempotencyTTL)
		}

		var exporter services.RegistrationExporter
		if cfg.Sheets.Enabled {
			log.Info(ctx, LogInitExporter, zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
			exporter, err = sheets.NewExporter(ctx, &cfg.Sheets)
			if err != nil {
				log.Error(ctx, ErrCreateExporter, zap.Error(err))
				exitCode = 1
				return
			}
		}

		log.Info(ctx, LogInitUseCases)
		m := metrics.New(prometheus.DefaultRegisterer)
		registrationUseCase := app.NewRegistrationUseCase(repo, idempotency, exporter, m,
			app.WithExportDeadline(cfg.Sheets.ExportDeadline))
		hooks = append(hooks, func(ctx context.Context) error {
			log.Info(ctx, LogWaitingExports)
			return registrationUseCase.WaitExports(ctx)
		})

		if cfg.Health.Enabled {
			healthServer := grpc.New(&cfg.Health)
			if err := healthServer.Start(ctx); err != nil {
				log.Error(ctx, ErrStartGRPC, zap.Error(err))
				exitCode = 1
				return
			}

			watchCtx, stopWatch := context.WithCancel(ctx)
			if pinger != nil {
				go healthServer.WatchDatabase(watchCtx, pinger, cfg.Health.CheckInterval)
			} else {
				healthServer.SetServing(true)
			}
			hooks = append(hooks, func(ctx context.Context) error {
				stopWatch()
				healthServer.Stop(ctx)
				return nil
			})
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			BodyLimit:    cfg.HTTP.BodyLimit,
		})

		httpServer.SetupRouter(fiberApp, httpServer.RouterDeps{
			Service: registrationUseCase,
			Metrics: m,
			Pinger:  pinger,
		})

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(env)),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		// HTTP сервер останавливается первым, хранилища закрываются после.
		shutdown.Wait(cfg.Shutdown.GetTimeout(), func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			if err := fiberApp.ShutdownWithContext(ctx); err != nil {
				log.Error(ctx, LogStoppingHTTP, zap.Error(err))
			}
			for i := len(hooks) - 1; i >= 0; i-- {
				if err := hooks[i](ctx); err != nil {
					log.Warn(ctx, shutdown.LogHookFailed, zap.Error(err))
				}
			}
			return nil
		})

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
