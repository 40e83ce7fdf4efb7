//go:build wireinject

package bootstrap

import (
	"context"

	"rubconv-service/internal/application"
	httpserver "rubconv-service/internal/infrastructure/http"
	"rubconv-service/internal/infrastructure/worker"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideStateStore,
	ProvideArchive,
	ProvideHTTPClient,
	ProvideProviders,
	ProvideHost,
	ProvidePair,
	ProvideConverterService,
	ProvideAutoFetcher,
)

// API injector: builds the HTTP server and the in-process fetcher + Cleanup
func InitAPI(ctx context.Context) (*API, func(), error) {
	wire.Build(
		infraSet,
		httpserver.NewServer,
		ProvideAPI,
	)
	return nil, nil, nil
}

// Worker injector: builds application.Worker + Cleanup
func InitWorker(ctx context.Context) (application.Worker, func(), error) {
	wire.Build(
		infraSet,
		wire.Bind(new(application.Worker), new(*worker.AutoFetcher)),
	)
	return nil, nil, nil
}
