package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/server"
	"chat-relay/services"
	"chat-relay/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups (database close, hub
// shutdown) always execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := loggerFromLevel(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Store gateway, registry, relay
	messageRepository := repositories.NewMessageRepository(db, log)
	directory := repositories.NewDirectory(db)
	summaries := services.NewSummaryService(messageRepository)
	chatService := services.NewChatService(log, messageRepository, directory, summaries)

	registry := runtime.NewRegistry()
	router := runtime.NewRouter(registry)
	hub := transport.NewHub(log, config.BufferSize)
	relay := runtime.NewRelay(log, registry, router, summaries, hub)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised hub loop
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(hub)
	go sup.Run(ctx)

	// 6. HTTP & websocket surface
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	srv := server.New(log, chatService, directory, relay, hub, config.ConnectionBufferSize)
	srv.Router(app)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat relay", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	if err := app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
		log.Warn("Shutdown timed out", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
