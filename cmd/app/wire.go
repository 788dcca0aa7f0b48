//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/caustin-usgs/lcmap-gaia/internal/bootstrap"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/config"
	httpiface "github.com/caustin-usgs/lcmap-gaia/internal/interface/http"
	"github.com/caustin-usgs/lcmap-gaia/pkg/logger"
)

var generatorSet = wire.NewSet(
	provideLandcoverConfig,
	landcover.NewEngine,
	provideChipConfig,
	provideCCDCClient,
	provideSource,
	provideObjectStorage,
	provideRunRepository,
	provideTracerProvider,
	chip.NewService,
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		generatorSet,
		wire.Bind(new(httpiface.ProductService), new(*chip.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeGenerator() (*chip.Service, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		generatorSet,
	)
	return nil, nil, nil
}
