package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/events"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/storage"
	"github.com/jwebster45206/turn-engine/internal/turns"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/engine"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Turn Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"owned_subjects", cfg.OwnedSubjects,
		"scene_id", cfg.SceneID)

	if len(cfg.OwnedSubjects) == 0 {
		log.Error("OWNED_SUBJECTS must name at least one subject to automate")
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	sc, err := store.LoadScene(storageCtx, cfg.SceneID)
	if err != nil {
		log.Error("Failed to load scene", "scene", cfg.SceneID, "error", err)
		os.Exit(1)
	}
	if sc == nil {
		log.Warn("Scene not found, starting empty", "scene", cfg.SceneID)
		sc = &scene.Scene{ID: cfg.SceneID}
	}

	attacker := combat.NewAttacker(sc, store, nil, log)
	mover := combat.NewMover(sc, cfg.StepDelay, log)
	items := combat.NewItemUser(sc, store, nil, log)
	broadcaster := events.NewBroadcaster(store.Client(), log)

	eng := engine.New(engine.Deps{
		Mover:      mover,
		Attacker:   attacker,
		Items:      items,
		RangeCheck: attacker,
		Notifier:   broadcaster,
	}, cfg.StepDelay, log)

	listener := turns.New(store.Client(), store, eng, broadcaster, cfg.OwnedSubjects, cfg.SceneID, log)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- listener.Start()
	}()

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-done:
		if err != nil {
			log.Error("Turn listener failed", "error", err)
		}
	}

	listener.Stop()
	eng.Stop()

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
