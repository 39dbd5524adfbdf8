// Package main реализует терминальный драйвер киоска регистрации.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"kioskreg/internal/kiosk/adapters/apiclient"
	"kioskreg/internal/kiosk/config"
	"kioskreg/internal/kiosk/wizard"
	"kioskreg/pkg/logger"
	"kioskreg/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "KIOSK_LOGGER_MODE"
	EnvLoggerLevel = "KIOSK_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений киоска.
const (
	LogKioskStarted      = "kiosk started"
	LogKioskStopped      = "kiosk input closed"
	LogKioskShutdownDone = "kiosk shutdown complete"
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

		session := wizard.NewSession(wizard.NewMemoryDraftStore(), apiclient.New(&cfg.API))
		terminal := newTerminal(os.Stdin, os.Stdout)

		log.Info(ctx, LogKioskStarted, zap.String("api_base_url", cfg.API.BaseURL))

		runCtx, stop := context.WithCancel(ctx)
		go func() {
			defer stop()
			if err := terminal.run(runCtx, session); err != nil {
				log.Info(ctx, LogKioskStopped, zap.Error(err))
			}
		}()

		shutdown.WaitContext(runCtx, cfg.Shutdown.GetTimeout(), func(ctx context.Context) error {
			stop()
			if session.View() != wizard.ViewPending {
				return nil
			}
			// Отправка уже ушла на сервер: дожидаемся ответа, чтобы он попал в журнал.
			_, err := session.Wait(ctx)
			return err
		})

		log.Info(ctx, LogKioskShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
