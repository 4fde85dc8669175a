package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mk1945/cloudvault/internal/api"
	"github.com/mk1945/cloudvault/internal/config"
	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/platform/email"
	"github.com/mk1945/cloudvault/internal/service"
	"github.com/mk1945/cloudvault/internal/storage"
	"github.com/mk1945/cloudvault/internal/store/mongo"
)

// main is the entry point for the application.
func main() {
	if err := run(); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// run initializes and starts the HTTP server.
func run() error {
	// =========================================================================
	// Configuration
	//
	// Load configuration from environment variables. This is the only place
	// that reads the environment; everything downstream gets the config
	// injected through constructors.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.New(os.Stdout, "CLOUDVAULT | ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger.Println("Configuration loaded")

	// =========================================================================
	// Database Connection
	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbClient, err := mongo.NewClient(dbCtx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer func() {
		if err := dbClient.Disconnect(context.Background()); err != nil {
			logger.Printf("Error disconnecting from DB: %v", err)
		}
	}()
	logger.Println("Database connection established")

	// =========================================================================
	// Object Storage Gateway
	//
	// The mode is decided exactly once, here, from credential presence. With
	// no credentials configured the mock gateway serves deterministic URLs
	// so the service runs locally without live storage.
	mode := storage.ModeFromConfig(cfg.Storage)
	gateway, err := storage.New(mode, cfg.Storage)
	if err != nil {
		return fmt.Errorf("could not initialize storage gateway: %w", err)
	}
	if mode == storage.ModeMock {
		logger.Println("Storage gateway running in mock mode (no credentials configured)")
	} else {
		logger.Println("Storage gateway running against S3")
	}

	// =========================================================================
	// Initialize Dependencies (Dependency Injection)
	db := dbClient.Database(cfg.Mongo.Database)
	userStore := mongo.NewUserStore(db)
	entryStore := mongo.NewEntryStore(db)

	tokenSvc := crypto.NewJWTGenerator(cfg.Auth.AccessKey, cfg.Auth.RefreshKey, cfg.Auth.AccessKeyTTL, cfg.Auth.RefreshKeyTTL)
	passSvc := crypto.NewBcryptManager(0)
	shareTokens := crypto.NewShareTokenService(cfg.Share.Secret, cfg.Share.DefaultTTL)
	emailSvc := email.NewSMTPEmailService(cfg.Email, cfg.HTTP.FrontendURL)

	userService := service.NewUserService(userStore, tokenSvc, passSvc, emailSvc)
	entryService := service.NewEntryService(
		entryStore, userStore, gateway, shareTokens,
		cfg.HTTP.FrontendURL, cfg.Share.DefaultTTL, cfg.Share.PublicTTL,
	)

	userHandler := api.NewUserHandler(userService)
	entryHandler := api.NewEntryHandler(entryService)
	authMiddleware := api.NewAuthMiddleware(tokenSvc)

	logger.Println("Dependencies initialized")

	// =========================================================================
	// HTTP Server Setup
	mux := http.NewServeMux()

	api.RegisterRoutes(mux, userHandler, entryHandler, authMiddleware, logger)

	// Root handler for health checks.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintln(w, "API is running.")
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// =========================================================================
	// Start Server & Graceful Shutdown

	shutdownErr := make(chan error)

	go func() {
		logger.Printf("Server starting on %s", server.Addr)
		shutdownErr <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-shutdownErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Printf("Shutdown signal received: %s", sig)
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Println("Server shut down gracefully")
	return nil
}
