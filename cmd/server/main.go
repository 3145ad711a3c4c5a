package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/server"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	apps := flag.String("apps", cfg.Desktop.AppsDir, "Directory of app manifests")
	workers := flag.Int("workers", cfg.Worker.PoolSize, "Worker pool size")
	storage := flag.String("storage", cfg.Storage.Backend, "Storage backend (memory or sqlite)")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Desktop.AppsDir = *apps
	cfg.Worker.PoolSize = *workers
	cfg.Storage.Backend = *storage
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		_ = srv.Shutdown(context.Background())
		log.Fatalf("Server error: %v", err)
	}
}
