package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clickcart/server/internal/app"
	"github.com/clickcart/server/internal/shared/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	notifier, err := app.NewNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Notifier.Address,
		Handler: notifier.Router(),
	}

	go func() {
		log.Printf("Starting notifier on %s", cfg.Notifier.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start notifier: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notifier...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notifier.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Notifier forced to shutdown: %v", err)
	}

	log.Println("Notifier exited")
}
