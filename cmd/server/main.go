/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance timekeeping server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Create API handler (engine wired onto the store)
  4. Configure HTTP router
  5. Start server with graceful shutdown; optionally start the
     end-of-day absent batch

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: attendance.db)
               Use ":memory:" for an in-memory database
  -tz          IANA timezone for day truncation (default: UTC)
  -auto-close  Run the end-of-day absent batch in the background

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the batch and close the database
  4. Exit

EXAMPLES:
  ./server -db="./data/attendance.db" -tz="Asia/Jakarta" -auto-close
  ./server -db=":memory:" -port=3000

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

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "attendance.db", "SQLite database path")
	tz := flag.String("tz", "UTC", "IANA timezone for day truncation")
	autoClose := flag.Bool("auto-close", false, "run the end-of-day absent batch")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", *tz, err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath, loc)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, loc)
	router := api.NewRouter(handler)

	if *autoClose {
		handler.Closer.Start()
		defer handler.Closer.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Attendance engine listening on http://localhost:%d (tz=%s)", *port, loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
