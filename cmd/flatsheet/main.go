// Command flatsheet runs the conversion service: a webhook route that
// ingests form submissions and a dispatch route that runs the conversion,
// reformat, and cleanup jobs against Supabase Storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/edlowe/flatsheet/core/convert"
	"github.com/edlowe/flatsheet/internal/config"
	"github.com/edlowe/flatsheet/internal/logging"
	"github.com/edlowe/flatsheet/providers/ingest"
	"github.com/edlowe/flatsheet/providers/jobs"
	"github.com/edlowe/flatsheet/providers/server"
	"github.com/edlowe/flatsheet/providers/storage/supastore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	store, err := supastore.New(supastore.Config{
		URL:        cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseKey,
		Bucket:     cfg.Bucket,
	})
	if err != nil {
		log.Error("storage client error", "error", err)
		os.Exit(1)
	}

	ing, err := ingest.New(store, ingest.Config{
		FileFieldID:   cfg.FileFieldID,
		TypeformToken: cfg.TypeformToken,
	})
	if err != nil {
		log.Error("ingestor error", "error", err)
		os.Exit(1)
	}

	runner := jobs.NewRunner(store, convert.New(), jobs.WithLogger(log))

	srv, err := server.New(runner, ing, cfg.IngestRoute, server.WithLogger(log))
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port, "ingest_route", cfg.IngestRoute, "bucket", cfg.Bucket)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}
}
