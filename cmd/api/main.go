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

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/config"
	"github.com/kodcommunity/forum/backend/internal/database"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/repository"
	"github.com/kodcommunity/forum/backend/internal/repository/memory"
	"github.com/kodcommunity/forum/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "forum: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, health, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(cfg, log, repos, health).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log logging.Logger) (*repository.Repositories, server.HealthChecker, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		health := server.HealthFunc(func() map[string]string {
			return map[string]string{"status": "up", "store": config.StoreMemory}
		})
		return memory.New(), health, func() {}, nil
	}

	db, err := database.New(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error(ctx, "close database", "error", err)
		}
	}
	return repository.NewPostgres(db.GetDB()), db, closeDB, nil
}
