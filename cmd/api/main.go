package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricetruth-service/internal/bootstrap"
	"pricetruth-service/internal/config"
	infraconfig "pricetruth-service/internal/infrastructure/config"
	httpserver "pricetruth-service/internal/infrastructure/http"
	"pricetruth-service/internal/infrastructure/logx"
	"pricetruth-service/internal/metrics"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	metrics.Init()

	stores, closeStores, err := bootstrap.BuildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap stores", zap.Error(err))
	}
	defer closeStores()

	adapters, err := bootstrap.BuildSources(cfg)
	if err != nil {
		logger.Fatal("bootstrap sources", zap.Error(err))
	}
	svc, err := bootstrap.BuildService(cfg, stores, adapters)
	if err != nil {
		logger.Fatal("bootstrap service", zap.Error(err))
	}

	srv := httpserver.NewServer(svc)
	srv.SetReadyCheck(stores.Verdicts.Ping)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", addr),
			zap.String("cache_backend", cfg.CacheBackend),
			zap.Int("sources", len(adapters)),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
