// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания и обработки сигналов SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kioskreg/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogShutdownSignal  = "shutdown signal received"
	LogShutdownContext = "shutdown requested by application"
	LogHookFailed      = "shutdown hook failed"
	LogHooksTimeout    = "shutdown hooks did not finish in time"
)

// Wait блокирует выполнение до получения сигнала SIGINT или SIGTERM,
// затем выполняет все хуки в рамках заданного timeout.
func Wait(timeout time.Duration, hooks ...func(context.Context) error) {
	WaitContext(context.Background(), timeout, hooks...)
}

// WaitContext работает как Wait, но также завершается при отмене ctx.
func WaitContext(ctx context.Context, timeout time.Duration, hooks ...func(context.Context) error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log := logger.Log(ctx)

	select {
	case sig := <-sigCh:
		log.Info(ctx, LogShutdownSignal, zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info(ctx, LogShutdownContext)
	}

	runHooks(context.WithoutCancel(ctx), timeout, hooks)
}

func runHooks(parent context.Context, timeout time.Duration, hooks []func(context.Context) error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := logger.Log(ctx)

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn func(context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error(ctx, LogHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn(ctx, LogHooksTimeout, zap.Duration("timeout", timeout))
	}
}
