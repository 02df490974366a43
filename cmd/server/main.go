/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the insurance sale order server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize SQLite store
  3. Build the service and seed the preset payment terms
  4. Configure HTTP router and the overdue scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: ./insurance.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  TOKEN_SECRET (required), LOG_LEVEL, BASE_URL, OVERDUE_CRON,
  SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SENDER_EMAIL.
  See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the overdue scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - insurance/service.go: Operations
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/api"
	"github.com/warp/insurance-engine/config"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/notify"
	"github.com/warp/insurance-engine/store/sqlite"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize service
	opts := []insurance.Option{insurance.WithBaseURL(cfg.BaseURL)}
	if cfg.MailEnabled() {
		opts = append(opts, insurance.WithMailer(notify.NewSender(cfg, log)))
	} else {
		log.Warn("SMTP_HOST not set, contract emails are disabled")
	}
	svc := insurance.NewService(store, insurance.NewTokenIssuer(cfg.TokenSecret), log, opts...)

	terms, err := insurance.DefaultTerms()
	if err != nil {
		log.Fatalf("Failed to build preset payment terms: %v", err)
	}
	if _, err := svc.SeedTerms(context.Background(), terms); err != nil {
		log.Fatalf("Failed to seed payment terms: %v", err)
	}

	// Overdue scheduler
	var scheduler *api.OverdueScheduler
	if cfg.OverdueCron != "" {
		scheduler, err = api.NewOverdueScheduler(svc, cfg.OverdueCron, log)
		if err != nil {
			log.Fatalf("Failed to configure overdue scheduler: %v", err)
		}
		scheduler.Start()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", *port),
		Handler:      api.NewRouter(api.NewHandler(svc, log)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{"port": *port, "db": *dbPath}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
