package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ostanin/huddle/internal/application/config"
	"github.com/ostanin/huddle/internal/application/constant"
	"github.com/ostanin/huddle/internal/application/metric"
	"github.com/ostanin/huddle/internal/infra/adapters/memory"
	"github.com/ostanin/huddle/internal/infra/ports/http/handlers"
	"github.com/ostanin/huddle/internal/infra/ports/http/server"
	"github.com/ostanin/huddle/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	if cfg.Debug {
		slog.SetDefault(
			slog.New(
				slog.NewJSONHandler(
					os.Stdout,
					&slog.HandlerOptions{Level: slog.LevelDebug},
				),
			),
		)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	registry := memory.NewRoomRegistry()
	sessionRepo := memory.NewSessionRepository()
	wsConnRepo := memory.NewWSConnectionRepository()

	signalingUsecase := usecase.NewSignalingUsecase(registry, sessionRepo, wsConnRepo)

	iceHandler := handlers.NewIceHandler(cfg)
	roomHandler := handlers.NewRoomHandler(registry, sessionRepo)
	wsHandler := handlers.NewWebSocketHandler(cfg, signalingUsecase, wsConnRepo)

	echoSrv := server.New(cfg, iceHandler, roomHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
