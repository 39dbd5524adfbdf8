// Package grpc предоставляет gRPC сервер проверки здоровья сервиса регистраций.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"kioskreg/internal/registrations/config"
	"kioskreg/internal/registrations/ports/services"
	"kioskreg/pkg/logger"
)

// ServiceName - имя сервиса в протоколе grpc.health.v1.
const ServiceName = "kiosk.registrations"

// Константы для логирования.
const (
	LogServerStarting = "starting gRPC health server"
	LogServerStarted  = "gRPC health server started"
	LogServerStopping = "stopping gRPC health server"
	LogServerStopped  = "gRPC health server stopped"
	LogHealthChanged  = "serving status changed"
	ErrServerStart    = "failed to start gRPC health server"
)

// Server отдает статус сервиса регистраций по grpc.health.v1.
type Server struct {
	cfg    *config.HealthConfig
	server *grpc.Server
	health *health.Server
}

// New создает сервер. До первой проверки хранилища статус NOT_SERVING.
func New(cfg *config.HealthConfig) *Server {
	server := grpc.NewServer()
	healthServer := health.NewServer()

	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		cfg:    cfg,
		server: server,
		health: healthServer,
	}
}

// Start слушает адрес из конфигурации.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}

	s.Serve(ctx, listener)

	log.Info(ctx, LogServerStarted, zap.String("address", address))
	return nil
}

// Serve обслуживает запросы на listener в отдельной горутине.
func (s *Server) Serve(ctx context.Context, listener net.Listener) {
	go func() {
		if err := s.server.Serve(listener); err != nil {
			logger.Log(ctx).Error(ctx, ErrServerStart, zap.Error(err))
		}
	}()
}

// SetServing выставляет статус сервиса.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// WatchDatabase проверяет хранилище каждые interval и обновляет статус до отмены ctx.
func (s *Server) WatchDatabase(ctx context.Context, pinger services.Pinger, interval time.Duration) {
	log := logger.Log(ctx).With(zap.String("service", ServiceName))

	check := func(current bool) bool {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		err := pinger.Ping(pingCtx)
		serving := err == nil
		if serving != current {
			log.Info(ctx, LogHealthChanged, zap.Bool("serving", serving), zap.Error(err))
		}
		s.SetServing(serving)
		return serving
	}

	serving := check(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			serving = check(serving)
		}
	}
}

// Stop переводит сервис в NOT_SERVING и останавливает сервер.
func (s *Server) Stop(ctx context.Context) {
	log := logger.Log(ctx)

	log.Info(ctx, LogServerStopping)
	s.health.Shutdown()
	s.server.GracefulStop()
	log.Info(ctx, LogServerStopped)
}
