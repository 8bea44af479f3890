package main

import (
	"context"
	logg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danieleFFF/XPoll/internal/api"
	"github.com/danieleFFF/XPoll/internal/broadcast"
	"github.com/danieleFFF/XPoll/internal/config"
	"github.com/danieleFFF/XPoll/internal/repository"
	srv "github.com/danieleFFF/XPoll/internal/service"
	"github.com/danieleFFF/XPoll/internal/sessioncode"
	"github.com/danieleFFF/XPoll/pkg/logger"
	"github.com/danieleFFF/XPoll/pkg/tarantool"
	got "github.com/tarantool/go-tarantool"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		logg.Fatalf("failed to load config: %s", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		logg.Fatalf("failed to initialize logger: %s", err)
	}

	var store repository.SessionStore
	var conn *got.Connection
	switch cfg.Storage {
	case "tarantool":
		conn, err = tarantool.New(cfg.Tarantool)
		if err != nil {
			logg.Fatalf("failed to connect to Tarantool: %s", err)
		}
		store = repository.NewTarantoolStore(conn, log)
	default:
		store = repository.NewMemoryStore()
	}
	log.Info("storage backend selected", zap.String("storage", cfg.Storage))

	hub := broadcast.NewHub(log)
	go hub.Run()

	service := srv.New(store, hub, sessioncode.NewRandom(), log)
	handler := api.New(service, hub, log)

	mux := http.NewServeMux()
	handler.Register(mux)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	go func() {
		log.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatalf("http server error: %s", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	if conn != nil {
		conn.CloseGraceful()
	}
	logg.Println("server graceful stopped")
}
