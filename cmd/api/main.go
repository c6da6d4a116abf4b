package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/db"
	httpx "github.com/verdantlab/planthub/internal/http"
	"github.com/verdantlab/planthub/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; skip unless a collector endpoint is set
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "planthub", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	migrateCtx, cancelMigrate := config.WithTimeout(30 * time.Second)

	err = db.Migrate(migrateCtx, pool)

	cancelMigrate()

	if err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)

	err = db.EnsureSeedUser(seedCtx, pool, cfg)

	cancelSeed()

	if err != nil {
		log.Error("seed user failed", "err", err)
		os.Exit(1)
	}

	router, err := httpx.NewRouter(log, pool, cfg)

	if err != nil {
		log.Error("router init failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
