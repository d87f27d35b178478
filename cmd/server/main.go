package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quoridor-server/internal/api"
	"quoridor-server/internal/api/controller"
	"quoridor-server/internal/api/service"
	"quoridor-server/internal/config"
	"quoridor-server/internal/db"
	"quoridor-server/internal/events"
	"quoridor-server/internal/game"
	"quoridor-server/internal/logger"
	"quoridor-server/internal/repository"
	"quoridor-server/internal/server"
	"quoridor-server/internal/telemetry"
)

func main() {
	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel()
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize SQLite archive
	pool, err := db.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}
	defer pool.Close()

	resultRepo := repository.NewResultRepository(pool)

	// Compose lifecycle observers: the archive always, Redis when configured.
	observers := []game.Observer{repository.NewArchiver(resultRepo)}
	if cfg.RedisAddr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		observers = append(observers, events.NewPublisher(rdb))
	}

	// Create the game server
	srv := server.New(cfg, game.Observers(observers...))
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("game server: %v", err)
		}
	}()

	// Create the HTTP API
	matchService := service.NewMatchService(srv.Registry(), resultRepo)
	matchController := controller.NewMatchController(matchService)
	router := api.NewRouter(matchController, srv.WebSocketHandler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("http server started on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")

	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
