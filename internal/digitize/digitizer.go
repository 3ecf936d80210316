// Package digitize sends a diagram image to the configured model together with the
// fixed instruction prompt and turns the reply into a Result.
package digitize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleargraph/internal/gateway/provider"
	"cleargraph/internal/intake"
	"cleargraph/internal/logger"
	"cleargraph/internal/prompt"

	"github.com/google/uuid"
)

// ErrMissingAPIKey is returned when the provider has no credential configured.
var ErrMissingAPIKey = provider.ErrMissingAPIKey

// PromptSource yields the prompt set used for the next request.
type PromptSource interface {
	Current() prompt.Set
}

type Options struct {
	// ThinkingBudget is forwarded as-is; nil leaves the backend default.
	ThinkingBudget *int
	MaxTokens      int
}

type Digitizer struct {
	provider provider.ModelProvider
	prompts  PromptSource
	opts     Options
}

func New(p provider.ModelProvider, prompts PromptSource, opts Options) (*Digitizer, error) {
	if p == nil {
		return nil, errors.New("digitizer requires a model provider")
	}
	if prompts == nil {
		return nil, errors.New("digitizer requires a prompt source")
	}
	return &Digitizer{provider: p, prompts: prompts, opts: opts}, nil
}

// Ready reports whether requests can be sent at all.
func (d *Digitizer) Ready() bool { return d.provider.HasCredentials() }

func (d *Digitizer) ProviderID() string { return d.provider.ID() }

// Digitize performs exactly one model call for img.
func (d *Digitizer) Digitize(ctx context.Context, img intake.Image) (Result, error) {
	if !d.provider.HasCredentials() {
		return Result{}, ErrMissingAPIKey
	}
	set := d.prompts.Current()
	trace := uuid.NewString()
	payload := provider.ChatPayload{
		TraceID:        trace,
		System:         set.System,
		User:           set.User,
		Images:         []provider.ImagePayload{{MIMEType: img.MIMEType, Data: img.Base64()}},
		ResponseSchema: OutputSchema(set.Fields),
		ThinkingBudget: d.opts.ThinkingBudget,
		MaxTokens:      d.opts.MaxTokens,
	}
	start := time.Now()
	raw, err := d.provider.Call(ctx, payload)
	if err != nil {
		logger.Errorf("[digitize] trace=%s provider=%s call failed after %s: %v", trace, d.provider.ID(), time.Since(start).Round(time.Millisecond), err)
		if errors.Is(err, provider.ErrMissingAPIKey) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("model call failed: %w", err)
	}
	res, err := ParseResponse(raw)
	if err != nil {
		logger.Warnf("[digitize] trace=%s unusable response: %v", trace, err)
		return Result{}, err
	}
	logger.Infof("[digitize] trace=%s provider=%s image=%s/%dB title=%q svg=%dB in %s",
		trace, d.provider.ID(), img.MIMEType, img.Size(), res.Title, len(res.SVGContent), time.Since(start).Round(time.Millisecond))
	return res, nil
}
