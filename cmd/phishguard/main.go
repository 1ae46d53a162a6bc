package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/smtpingest"
	"github.com/hollis/phishguard/internal/adapters/storage"
	"github.com/hollis/phishguard/internal/config"
	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	handler http.Handler,
	store storage.Store,
	ingest *smtpingest.Server,
	narrative core.NarrativeGenerator,
) error {
	defer logger.Sync()

	serverCfg := cfg.GetServer()

	httpServer := &http.Server{
		Addr:         serverCfg.ListenAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("address", serverCfg.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	if serverCfg.SMTPEnabled {
		if err := ingest.Start(); err != nil {
			logger.Fatal("Failed to start SMTP ingest", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if serverCfg.SMTPEnabled {
		if err := ingest.Stop(); err != nil {
			logger.Error("Failed to stop SMTP ingest", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := narrative.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close narrative client", zap.Error(err))
		}
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
