package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitprime-classes/config"
	"fitprime-classes/internal/api"
	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/db"
	"fitprime-classes/internal/identity"
	"fitprime-classes/internal/normalize"
	"fitprime-classes/internal/refresh"
	"fitprime-classes/internal/store"
	"fitprime-classes/internal/viewmodel"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "fitprimed ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Classes.Timezone)
	if err != nil {
		logger.Fatalf("invalid timezone %q: %v", cfg.Classes.Timezone, err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Restore the signed-in user from the previous run
	users, err := identity.Load(ctx, appStore, cfg.Backend.AdminToken != "")
	if err != nil {
		logger.Fatalf("failed to restore session: %v", err)
	}
	if u := users.Current(); u != nil {
		logger.Printf("restored session for user %s", u.ID)
	}

	client := backend.NewClient(&cfg.Backend)
	classes := viewmodel.New(client, users, appStore, viewmodel.Options{
		Location:    loc,
		BookingLead: cfg.Classes.BookingLead,
		LoadTimeout: cfg.Classes.LoadTimeout,
	})

	// Background refreshes: interval ticks, sign-in changes and client hints
	worker := refresh.NewWorker(refresh.RefreshFunc(func(ctx context.Context) error {
		_, err := classes.Refresh(ctx)
		return err
	}), cfg.Classes.RefreshInterval)
	go worker.Run(ctx)

	changes, unsubscribe := users.Subscribe()
	defer unsubscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				worker.Trigger(refresh.ReasonUser)
			}
		}
	}()
	worker.Trigger(refresh.ReasonManual)

	// Initialize router
	handler := api.NewHandler(classes, users, client, appStore, worker, normalize.New(loc))
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d (backend %s)", cfg.Server.Port, client.BaseURL())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
