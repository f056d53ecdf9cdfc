package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/harentsoaR/dentist-sync/internal/app"
	"github.com/harentsoaR/dentist-sync/internal/config"
)

func main() {
	cfg := config.Load()
	log.Printf("REMOTE_BACKEND: %s", cfg.RemoteBackend)
	log.Printf("LOCAL_DB_PATH: %s", cfg.LocalDBPath)
	log.Printf("API_PORT: %s", cfg.Port)
	if cfg.JWTSecret != "" {
		log.Println("JWT_SECRET is SET.")
	} else {
		log.Println("JWT_SECRET is NOT SET.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close(context.Background())

	if err := a.Start(ctx); err != nil {
		log.Fatalf("Failed to load local snapshot: %v", err)
	}
	if err := a.Serve(ctx); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
