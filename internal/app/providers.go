package app

import (
	"context"

	"cleargraph/internal/config"
	"cleargraph/internal/digitize"
	"cleargraph/internal/prompt"
)

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
	BuildDigitizer() (*digitize.Digitizer, *prompt.Registry, error)
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideDigitizerFromBuilder(b appBuilderDeps) (*digitize.Digitizer, error) {
	d, _, err := b.BuildDigitizer()
	return d, err
}
