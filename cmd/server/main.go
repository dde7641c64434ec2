// Command server boots the room manager, registers every game engine,
// and serves the WebSocket and HTTP surface. Grounded on the teacher's
// main.go wiring order (load config, spawn engine, spawn room manager,
// register HTTP handlers, listen), adapted for structured logging,
// viper-sourced configuration, and graceful shutdown on signal.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/config"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/game/golf"
	"github.com/lguibr/breakpoint/internal/game/lasertag"
	"github.com/lguibr/breakpoint/internal/game/platformer"
	"github.com/lguibr/breakpoint/internal/game/tron"
	"github.com/lguibr/breakpoint/internal/roommgr"
	"github.com/lguibr/breakpoint/internal/transport"
	"github.com/lguibr/breakpoint/internal/webhook"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("BREAKPOINT_CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	registry := game.NewRegistry()
	registry.Register("mini-golf", golf.New)
	registry.Register("platformer", platformer.New)
	registry.Register("laser-tag", lasertag.New)
	registry.Register("tron", tron.New)

	engine := actorkit.NewEngineWithLogger(logger)

	managerPID := engine.Spawn(actorkit.NewProps(roommgr.NewProducer(roommgr.Config{
		OutboundCapacity: cfg.OutboundQueueDepth,
		RoomConfig: domain.RoomConfig{
			MaxPlayers:           cfg.DefaultMaxPlayers,
			RoundDuration:        cfg.RoundDuration,
			BetweenRoundDuration: cfg.BetweenRoundDuration,
		},
		RoundCount:    cfg.DefaultRoundCount,
		IdleThreshold: cfg.IdleRoomThreshold,
		SweepInterval: cfg.IdleRoomSweepInterval,
		Registry:      registry,
		Logger:        logger,
	})))
	if managerPID == nil {
		logger.Fatal("failed to spawn room manager")
	}

	router := transport.NewRouter(&transport.Router{
		Engine:     engine,
		ManagerPID: managerPID,
		Config:     cfg,
		Limiter:    transport.NewLimiter(cfg.MaxConnections),
		Logger:     logger,
	})
	router.Handle("/webhooks/alerts", &webhook.Handler{
		Secret:        cfg.WebhookSecret,
		RequireSigned: cfg.WebhookRequireSigned,
		Engine:        engine,
		ManagerPID:    managerPID,
		Logger:        logger,
	}).Methods(http.MethodPost)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	engine.Shutdown(5 * time.Second)
	logger.Info("shutdown complete")
}
