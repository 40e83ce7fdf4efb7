package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rubconv-service/internal/bootstrap"
	"rubconv-service/internal/config"
	httpserver "rubconv-service/internal/infrastructure/http"
	"rubconv-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, cleanup, err := bootstrap.InitAPI(ctx)
	if err != nil {
		logger.Fatal("bootstrap api", zap.Error(err))
	}
	defer cleanup()

	addr := ":" + api.Config.Port
	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(api.Server),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		api.Fetcher.Start(ctx)
	}()

	go func() {
		logger.Info("server started", zap.String("addr", addr), zap.String("env", api.Config.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	wg.Wait()
	api.Service.Wait()
	logger.Info("server stopped")
}
