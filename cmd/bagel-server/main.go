// Package main is the entry point for the bagel shop host server.
// It only handles dependency injection and transport wiring; all game logic
// lives in internal/engine.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/engine"
	"github.com/bagelworks/bageltycoon/server/internal/infra/storage"
	"github.com/bagelworks/bageltycoon/server/internal/network"
	"github.com/bagelworks/bageltycoon/server/internal/platform/logger"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "bagelshop.db", "path to the SQLite save database")
	flag.Parse()

	appLogger := logger.NewLogger()
	appLogger.Info("Initializing bagel shop server...")

	db, err := storage.InitSQLite(*dbPath)
	if err != nil {
		appLogger.Error("failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := storage.NewSQLiteStateRepository(db, storage.DefaultSlot)

	cfg := engine.DefaultConfig()
	cfg.Repo = repo
	cfg.Logger = appLogger
	eng := engine.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := network.NewHub(eng, appLogger)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWS(hub, w, r)
	})
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		appLogger.Info("Listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server error: %v", err)
			stop()
		}
	}()

	// The shop opens for customers once the host is up.
	eng.EnableSpawning()

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	// Stops the scheduler and writes the final save.
	eng.Close()
	appLogger.Info("Goodbye.")
}
