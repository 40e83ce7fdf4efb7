package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rubconv-service/internal/application"
	"rubconv-service/internal/config"
	"rubconv-service/internal/domain"
	"rubconv-service/internal/host"
	httpserver "rubconv-service/internal/infrastructure/http"
	"rubconv-service/internal/infrastructure/httpx"
	"rubconv-service/internal/infrastructure/logx"
	"rubconv-service/internal/infrastructure/memstore"
	"rubconv-service/internal/infrastructure/pg"
	"rubconv-service/internal/infrastructure/provider"
	redisstore "rubconv-service/internal/infrastructure/redis"
	"rubconv-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

// Providers groups the three rate sources.
type Providers struct {
	Market    application.MarketProvider
	Reference application.ReferenceProvider
	Depth     application.DepthProvider
}

// API is everything cmd/api runs.
type API struct {
	Config  config.Config
	Service *application.ConverterService
	Server  *httpserver.Server
	Fetcher *worker.AutoFetcher
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideStateStore(ctx context.Context, cfg config.Config, log *zap.Logger) (application.StateStore, func(), error) {
	switch cfg.StateBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// not fatal: the service starts from defaults and /readyz reports it
			log.Warn("redis.ping_failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cleanup := func() {
			log.Info("closing redis")
			_ = client.Close()
		}
		return redisstore.New(client, cfg.StateKey), cleanup, nil
	case "", "memory":
		return memstore.New(), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported STATE_BACKEND=%q", cfg.StateBackend)
	}
}

func ProvideArchive(ctx context.Context, cfg config.Config, log *zap.Logger) (application.QuoteArchive, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return pg.NewQuoteRepo(db), cleanup, nil
	case "", "none":
		return application.NoopArchive{}, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideHTTPClient(cfg config.Config) *httpx.Client {
	return &httpx.Client{HTTP: &http.Client{Timeout: cfg.ProviderTimeout}}
}

func ProvidePair(cfg config.Config) domain.Pair {
	return domain.Pair{Base: cfg.DepthBase, Quote: cfg.DepthQuote, Symbol: cfg.DepthSymbol}
}

func ProvideProviders(cfg config.Config, client *httpx.Client) (Providers, error) {
	switch cfg.Provider {
	case "http":
		return Providers{
			Market:    &provider.MarketProvider{BaseURL: cfg.MarketAPIBase, Client: client},
			Reference: &provider.ReferenceProvider{URL: cfg.ReferenceAPIURL, Client: client},
			Depth:     &provider.DepthProvider{BaseURL: cfg.DepthAPIBase, Limit: cfg.DepthLimit, Client: client},
		}, nil
	case "", "fake":
		rates := provider.DefaultFakeRates()
		return Providers{
			Market:    provider.NewFake(rates),
			Reference: provider.NewFakeReference(rates),
			Depth:     provider.NewFakeDepth(35),
		}, nil
	default:
		return Providers{}, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

func ProvideHost(cfg config.Config, log *zap.Logger) host.Capabilities {
	return host.Select(cfg.HostCapabilities, log, "")
}

func ProvideConverterService(
	ctx context.Context,
	store application.StateStore,
	p Providers,
	archive application.QuoteArchive,
	h host.Capabilities,
	pair domain.Pair,
	log *zap.Logger,
) *application.ConverterService {
	return application.NewConverterService(ctx, store, p.Market, p.Reference, p.Depth,
		application.WithArchive(archive),
		application.WithHost(h),
		application.WithPair(pair),
		application.WithLogger(log.With(zap.String("component", "converter"))),
	)
}

func ProvideAutoFetcher(svc *application.ConverterService, cfg config.Config, log *zap.Logger) *worker.AutoFetcher {
	return &worker.AutoFetcher{
		Svc:     svc,
		Every:   cfg.AutoFetchInterval,
		Timeout: 2 * cfg.ProviderTimeout,
		Log:     log.With(zap.String("worker", "auto_fetch")),
	}
}

func ProvideAPI(cfg config.Config, svc *application.ConverterService, srv *httpserver.Server, f *worker.AutoFetcher) *API {
	return &API{Config: cfg, Service: svc, Server: srv, Fetcher: f}
}
