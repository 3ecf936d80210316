package app

import (
	"context"
	"fmt"

	"cleargraph/internal/config"
	"cleargraph/internal/digitize"
	"cleargraph/internal/gateway/provider"
	"cleargraph/internal/logger"
	"cleargraph/internal/prompt"
	uihttp "cleargraph/internal/transport/http/ui"
	"cleargraph/internal/workspace"
)

type AppBuilder struct {
	cfg *config.Config

	providerFn   func(config.AIConfig) (provider.ModelProvider, error)
	promptsFn    func(config.PromptConfig) (*prompt.Registry, error)
	workspacesFn func(workspace.Digitizer, *config.Config) (*workspace.Manager, error)
	httpFn       func(*config.Config, *workspace.Manager, uihttp.Digitizer) (*uihttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		providerFn:   buildModelProvider,
		promptsFn:    loadPromptRegistry,
		workspacesFn: buildWorkspaceManager,
		httpFn:       buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildModelProvider(cfg config.AIConfig) (provider.ModelProvider, error) {
	return provider.BuildProvider(provider.ModelCfg{
		Provider: cfg.Provider,
		APIURL:   cfg.APIURL,
		APIKey:   cfg.ResolveAPIKey(),
		Model:    cfg.Model,
		Headers:  cfg.Headers,
		Timeout:  cfg.Timeout(),
	})
}

func loadPromptRegistry(cfg config.PromptConfig) (*prompt.Registry, error) {
	return prompt.NewRegistry(cfg.Path)
}

func buildWorkspaceManager(d workspace.Digitizer, cfg *config.Config) (*workspace.Manager, error) {
	return workspace.NewManager(d, workspace.ManagerOptions{
		Capacity:        cfg.Session.Capacity,
		IdleTTL:         cfg.Session.TTL(),
		AnalysisTimeout: cfg.AI.Timeout(),
	})
}

func buildHTTPServer(cfg *config.Config, mgr *workspace.Manager, d uihttp.Digitizer) (*uihttp.Server, error) {
	poweredBy, poweredByURL := "Gemini", "https://ai.google.dev"
	if cfg.AI.Provider == config.ProviderOpenAI {
		poweredBy, poweredByURL = "OpenAI", "https://platform.openai.com"
	}
	return uihttp.NewServer(uihttp.ServerConfig{
		Addr:         cfg.App.HTTPAddr,
		Workspaces:   mgr,
		Digitizer:    d,
		UploadLimit:  cfg.Upload.MaxBytes,
		CookieName:   cfg.Session.CookieName,
		SessionTTL:   cfg.Session.TTL(),
		APITimeout:   cfg.AI.Timeout(),
		PoweredBy:    poweredBy,
		PoweredByURL: poweredByURL,
	})
}

// BuildDigitizer assembles the provider, prompt registry and digitizer. The CLI uses
// it on its own; Build layers the web stack on top.
func (b *AppBuilder) BuildDigitizer() (*digitize.Digitizer, *prompt.Registry, error) {
	if b.cfg == nil {
		return nil, nil, fmt.Errorf("nil config")
	}
	p, err := b.providerFn(b.cfg.AI)
	if err != nil {
		return nil, nil, fmt.Errorf("build model provider: %w", err)
	}
	prompts, err := b.promptsFn(b.cfg.Prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("load prompts: %w", err)
	}
	budget := b.cfg.AI.ThinkingBudget
	d, err := digitize.New(p, prompts, digitize.Options{ThinkingBudget: &budget})
	if err != nil {
		return nil, nil, err
	}
	return d, prompts, nil
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	d, prompts, err := b.BuildDigitizer()
	if err != nil {
		return nil, err
	}
	mgr, err := b.workspacesFn(d, cfg)
	if err != nil {
		return nil, fmt.Errorf("build workspace manager: %w", err)
	}
	srv, err := b.httpFn(cfg, mgr, d)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("build http server: %w", err)
	}
	snap := prompts.Snapshot()
	return &App{
		cfg:        cfg,
		digitizer:  d,
		workspaces: mgr,
		http:       srv,
		Summary: &StartupSummary{
			Provider:        d.ProviderID(),
			APIKeyPresent:   d.Ready(),
			HTTPAddr:        srv.Addr(),
			PromptSource:    snap.Source,
			PromptVersion:   snap.Version,
			UploadLimit:     cfg.Upload.MaxBytes,
			SessionCapacity: cfg.Session.Capacity,
			SessionTTL:      cfg.Session.TTL(),
			AnalysisTimeout: cfg.AI.Timeout(),
		},
	}, nil
}

func WithModelProvider(fn func(config.AIConfig) (provider.ModelProvider, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.providerFn = fn
		}
	}
}

func WithPromptRegistry(fn func(config.PromptConfig) (*prompt.Registry, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.promptsFn = fn
		}
	}
}

func WithHTTPServer(fn func(*config.Config, *workspace.Manager, uihttp.Digitizer) (*uihttp.Server, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.httpFn = fn
		}
	}
}
