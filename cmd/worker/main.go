package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rubconv-service/internal/bootstrap"
	"rubconv-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log := logx.L()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, cleanup, err := bootstrap.InitWorker(ctx)
	if err != nil {
		log.Fatal("init worker", zap.Error(err))
	}
	defer cleanup()
	w.Start(ctx)
}
