package app

import (
	"context"
	"fmt"

	"cleargraph/internal/config"
	"cleargraph/internal/digitize"
	uihttp "cleargraph/internal/transport/http/ui"
	"cleargraph/internal/workspace"

	"golang.org/x/sync/errgroup"
)

// App ties the web server to the workspace table and the digitizer.
type App struct {
	cfg        *config.Config
	digitizer  *digitize.Digitizer
	workspaces *workspace.Manager
	http       *uihttp.Server
	Summary    *StartupSummary
}

// NewApp builds the application without starting it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildAppWithWire(ctx, cfg)
}

// NewDigitizer builds only the inference side, for one-shot use.
func NewDigitizer(cfg *config.Config) (*digitize.Digitizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildDigitizerWithWire(cfg)
}

// Run serves HTTP until ctx is cancelled, then cancels in-flight analyses.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	defer a.workspaces.Close()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

func (a *App) Digitizer() *digitize.Digitizer {
	if a == nil {
		return nil
	}
	return a.digitizer
}
