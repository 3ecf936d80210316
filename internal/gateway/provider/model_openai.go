package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cleargraph/internal/logger"
	"cleargraph/internal/pkg/jsonutil"
)

// OpenAIChatClient targets OpenAI-compatible /chat/completions endpoints that accept
// image_url content parts.
type OpenAIChatClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	ExtraHeaders map[string]string
	HTTPClient   *http.Client
}

func (c *OpenAIChatClient) HasAPIKey() bool   { return strings.TrimSpace(c.APIKey) != "" }
func (c *OpenAIChatClient) ModelName() string { return c.Model }

func (c *OpenAIChatClient) endpoint() string {
	url := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	// Tolerate a base URL that already carries the full path.
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (c *OpenAIChatClient) buildBody(p ChatPayload, redact bool) map[string]any {
	messages := []map[string]any{}
	if p.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": p.System})
	}
	content := make([]map[string]any, 0, len(p.Images)+1)
	if p.User != "" {
		content = append(content, map[string]any{"type": "text", "text": p.User})
	}
	for _, img := range p.Images {
		url := img.DataURI()
		if redact {
			url = fmt.Sprintf("data:%s;base64,<%d chars>", img.MIMEType, len(img.Data))
		}
		content = append(content, map[string]any{"type": "image_url", "image_url": map[string]any{"url": url}})
	}
	messages = append(messages, map[string]any{"role": "user", "content": content})

	body := map[string]any{"model": c.Model, "messages": messages}
	if p.ResponseSchema != nil {
		name := p.ResponseSchema.Name
		if name == "" {
			name = "response"
		}
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"strict": true,
				"schema": p.ResponseSchema.JSONSchema(),
			},
		}
	}
	if p.MaxTokens > 0 {
		body["max_tokens"] = p.MaxTokens
	}
	return body
}

func (c *OpenAIChatClient) Generate(ctx context.Context, p ChatPayload) (string, error) {
	b, err := json.Marshal(c.buildBody(p, false))
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	url := c.endpoint()
	hdrs := c.headers()
	if redacted, err := json.Marshal(c.buildBody(p, true)); err == nil {
		logger.LogLLMRequest("openai", p.TraceID, p.System, p.User, llmImages(p.Images), jsonutil.Pretty(string(redacted)))
	}
	logger.Debugf("[AI] request: POST %s, headers=%v, bytes=%d", url, maskHeaders(hdrs), len(b))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	for k, v := range hdrs {
		req.Header.Set(k, v)
	}
	resp, err := httpClient(c.HTTPClient, c.Timeout).Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var eresp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		msg := strings.TrimSpace(eresp.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		return "", &StatusError{Provider: "openai", Code: resp.StatusCode, Message: msg}
	}
	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	if refusal := strings.TrimSpace(r.Choices[0].Message.Refusal); refusal != "" {
		return "", fmt.Errorf("model refused: %s", refusal)
	}
	out := r.Choices[0].Message.Content
	logger.LogLLMResponse("openai", p.TraceID, out)
	return out, nil
}

func (c *OpenAIChatClient) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.HasAPIKey() {
		h["Authorization"] = "Bearer " + c.APIKey
	}
	for k, v := range c.ExtraHeaders {
		h[k] = v
	}
	return h
}
