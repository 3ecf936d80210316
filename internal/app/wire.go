//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"cleargraph/internal/config"
	"cleargraph/internal/digitize"

	"github.com/google/wire"
)

var builderSet = wire.NewSet(
	provideAppBuilder,
	wire.Bind(new(appBuilderDeps), new(*AppBuilder)),
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(builderSet, provideAppFromBuilder)
	return nil, nil
}

func buildDigitizerWithWire(cfg *config.Config) (*digitize.Digitizer, error) {
	wire.Build(builderSet, provideDigitizerFromBuilder)
	return nil, nil
}
