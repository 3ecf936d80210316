package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network call when no credential is configured.
var ErrMissingAPIKey = errors.New("API Key is missing.")

// ImagePayload is one inline image, base64 encoded.
type ImagePayload struct {
	MIMEType string
	Data     string
}

func (p ImagePayload) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}

// ChatPayload is a single-turn multimodal request.
type ChatPayload struct {
	TraceID        string
	System         string
	User           string
	Images         []ImagePayload
	ResponseSchema *Schema
	// ThinkingBudget is forwarded to backends that support it; nil leaves the backend default.
	ThinkingBudget *int
	MaxTokens      int
}

type ModelProvider interface {
	ID() string
	Model() string
	SupportsVision() bool
	HasCredentials() bool

	Call(ctx context.Context, payload ChatPayload) (string, error)
}

// StatusError is a non-2xx answer from a backend.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status=%d: %s", e.Provider, e.Code, e.Message)
}

// ChatClient is the transport half of a provider.
type ChatClient interface {
	Generate(ctx context.Context, payload ChatPayload) (string, error)
	HasAPIKey() bool
	ModelName() string
}

// ClientProvider adapts a ChatClient to ModelProvider.
type ClientProvider struct {
	id     string
	vision bool
	client ChatClient
}

func NewClientProvider(id string, vision bool, client ChatClient) *ClientProvider {
	return &ClientProvider{id: id, vision: vision, client: client}
}

func (p *ClientProvider) ID() string           { return p.id }
func (p *ClientProvider) Model() string        { return p.client.ModelName() }
func (p *ClientProvider) SupportsVision() bool { return p.vision }
func (p *ClientProvider) HasCredentials() bool { return p.client.HasAPIKey() }

func (p *ClientProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	if !p.client.HasAPIKey() {
		return "", ErrMissingAPIKey
	}
	if len(payload.Images) > 0 && !p.vision {
		return "", fmt.Errorf("provider %s does not accept images", p.id)
	}
	return p.client.Generate(ctx, payload)
}
