package provider

import (
	"fmt"
	"strings"
	"time"

	"cleargraph/internal/logger"
)

type ModelCfg struct {
	ID, Provider, APIURL, APIKey, Model string
	Headers                             map[string]string
	Timeout                             time.Duration
}

// BuildProvider creates the configured backend. Both supported backends accept images.
func BuildProvider(m ModelCfg) (ModelProvider, error) {
	kind := strings.ToLower(strings.TrimSpace(m.Provider))
	id := strings.TrimSpace(m.ID)
	if id == "" {
		id = kind
		if model := strings.TrimSpace(m.Model); model != "" {
			id = fmt.Sprintf("%s:%s", kind, model)
		}
	}
	var client ChatClient
	switch kind {
	case "gemini":
		client = &GeminiClient{BaseURL: m.APIURL, APIKey: m.APIKey, Model: m.Model, Timeout: m.Timeout, ExtraHeaders: m.Headers}
	case "openai":
		client = &OpenAIChatClient{BaseURL: m.APIURL, APIKey: m.APIKey, Model: m.Model, Timeout: m.Timeout, ExtraHeaders: m.Headers}
	default:
		return nil, fmt.Errorf("unsupported provider %q", m.Provider)
	}
	if !client.HasAPIKey() {
		logger.Warnf("provider %s has no API key; digitize requests will fail until one is configured", id)
	}
	return NewClientProvider(id, true, client), nil
}
