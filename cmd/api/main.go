package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/events"
	"github.com/jwebster45206/turn-engine/internal/handlers"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/middleware"
	"github.com/jwebster45206/turn-engine/internal/storage"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/engine"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Turn Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"scene_id", cfg.SceneID)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Load the active scene; an empty one is usable until combatants
	// are saved.
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

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	queueHandler := handlers.NewQueueHandler(store, log)
	mux.Handle("/v1/queue/", queueHandler)

	runHandler := handlers.NewRunHandler(store, eng, cfg.SceneID, log)
	mux.Handle("/v1/run", runHandler)
	mux.Handle("/v1/run/", runHandler)

	subjectsHandler := handlers.NewSubjectsHandler(store, log)
	mux.Handle("/v1/subjects", subjectsHandler)
	mux.Handle("/v1/subjects/", subjectsHandler)

	itemsHandler := handlers.NewItemsHandler(store, log)
	mux.Handle("/v1/items", itemsHandler)
	mux.Handle("/v1/items/", itemsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Stop any active run before closing shared resources.
	eng.Stop()

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
