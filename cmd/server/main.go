/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the certificate economy accounting server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite gateway
  3. Create API handler with dependencies
  4. Configure HTTP router and background scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: economy.db)
             Use ":memory:" for in-memory database
  -overdraw  Allowed member account overdraw (default: 0)
  -interval  Scheduler interval for activation and payouts (default: 1h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/economy.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with a daily payout cycle and a small overdraw allowance
  ./server -interval=24h -overdraw=10

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commonplan/certeconomy/api"
	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "economy.db", "SQLite database path")
	overdraw := flag.String("overdraw", "0", "Allowed member account overdraw")
	interval := flag.Duration("interval", 1*time.Hour, "Scheduler interval")
	flag.Parse()

	allowedOverdraw, err := decimal.NewFromString(*overdraw)
	if err != nil || allowedOverdraw.IsNegative() {
		log.Fatalf("Invalid overdraw value: %q", *overdraw)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, ledger.SystemClock{}, allowedOverdraw)

	// Create router and scheduler
	router := api.NewRouter(handler)
	scheduler := api.NewEconomyScheduler(handler)
	scheduler.CheckInterval = *interval
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
