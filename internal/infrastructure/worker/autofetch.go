package worker

import (
	"context"
	"fmt"
	"time"

	"rubconv-service/internal/application"

	"go.uber.org/zap"
)

// Refresher is the part of the converter the fetcher drives.
type Refresher interface {
	AutoFetch(ctx context.Context) bool
	Refresh(ctx context.Context) error
}

var _ application.Worker = (*AutoFetcher)(nil)

// AutoFetcher refreshes rates on a fixed interval while the session has
// auto-fetch enabled.
type AutoFetcher struct {
	Svc     Refresher
	Every   time.Duration
	Timeout time.Duration
	Log     *zap.Logger
}

func (w *AutoFetcher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Every <= 0 {
		w.Every = time.Minute
	}

	t := time.NewTicker(w.Every)
	defer t.Stop()

	log.Info("auto_fetch.started", zap.Duration("every", w.Every))
	for {
		select {
		case <-ctx.Done():
			log.Info("auto_fetch.stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *AutoFetcher) tick(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("auto_fetch.panic", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	// the preference lives in the shared store and may be toggled by the api
	if !w.Svc.AutoFetch(ctx) {
		log.Debug("auto_fetch.skipped")
		return
	}
	start := time.Now()
	if err := w.Svc.Refresh(ctx); err != nil {
		log.Warn("auto_fetch.failed", zap.Error(err))
		return
	}
	log.Debug("auto_fetch.done", zap.Duration("took", time.Since(start)))
}
