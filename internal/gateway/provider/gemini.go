package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cleargraph/internal/logger"
	"cleargraph/internal/pkg/jsonutil"
	"cleargraph/internal/pkg/text"

	"github.com/tidwall/gjson"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls models/{model}:generateContent of the Gemini REST API.
type GeminiClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	ExtraHeaders map[string]string
	HTTPClient   *http.Client
}

func (c *GeminiClient) HasAPIKey() bool   { return strings.TrimSpace(c.APIKey) != "" }
func (c *GeminiClient) ModelName() string { return c.Model }

func (c *GeminiClient) endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}
	return fmt.Sprintf("%s/models/%s:generateContent", base, c.Model)
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiThinking struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any  `json:"responseSchema,omitempty"`
	ThinkingConfig   *geminiThinking `json:"thinkingConfig,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// buildRequest assembles the request body. With redact set, image payloads are replaced
// by a size marker so the body can be logged.
func (c *GeminiClient) buildRequest(p ChatPayload, redact bool) geminiRequest {
	parts := make([]geminiPart, 0, len(p.Images)+1)
	for _, img := range p.Images {
		data := img.Data
		if redact {
			data = fmt.Sprintf("<%d base64 chars>", len(data))
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MIMEType: img.MIMEType, Data: data}})
	}
	if strings.TrimSpace(p.User) != "" {
		parts = append(parts, geminiPart{Text: p.User})
	}
	req := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}
	if strings.TrimSpace(p.System) != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: p.System}}}
	}
	if p.ResponseSchema != nil {
		req.GenerationConfig.ResponseMIMEType = "application/json"
		req.GenerationConfig.ResponseSchema = p.ResponseSchema.geminiSchema()
	}
	if p.ThinkingBudget != nil {
		req.GenerationConfig.ThinkingConfig = &geminiThinking{ThinkingBudget: *p.ThinkingBudget}
	}
	if p.MaxTokens > 0 {
		req.GenerationConfig.MaxOutputTokens = p.MaxTokens
	}
	return req
}

func (c *GeminiClient) Generate(ctx context.Context, p ChatPayload) (string, error) {
	body, err := json.Marshal(c.buildRequest(p, false))
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}
	url := c.endpoint()
	logger.LogLLMRequest("gemini", p.TraceID, p.System, p.User, llmImages(p.Images), c.redactedBody(p))
	logger.Debugf("[AI] request: POST %s, headers=%v, bytes=%d", url, maskHeaders(c.headers()), len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}
	resp, err := httpClient(c.HTTPClient, c.Timeout).Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = text.Truncate(strings.TrimSpace(string(raw)), 300)
		}
		if msg == "" {
			msg = resp.Status
		}
		return "", &StatusError{Provider: "gemini", Code: resp.StatusCode, Message: msg}
	}
	out, err := parseGeminiText(raw)
	if err != nil {
		return "", err
	}
	logger.LogLLMResponse("gemini", p.TraceID, out)
	return out, nil
}

func (c *GeminiClient) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.HasAPIKey() {
		h["x-goog-api-key"] = c.APIKey
	}
	for k, v := range c.ExtraHeaders {
		h[k] = v
	}
	return h
}

func (c *GeminiClient) redactedBody(p ChatPayload) string {
	b, err := json.Marshal(c.buildRequest(p, true))
	if err != nil {
		return ""
	}
	return jsonutil.Pretty(string(b))
}

// parseGeminiText joins the text parts of the first candidate, skipping thought parts.
func parseGeminiText(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("gemini returned invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if reason := doc.Get("promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", reason)
	}
	cand := doc.Get("candidates.0")
	if !cand.Exists() {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var b strings.Builder
	cand.Get("content.parts").ForEach(func(_, part gjson.Result) bool {
		if part.Get("thought").Bool() {
			return true
		}
		b.WriteString(part.Get("text").String())
		return true
	})
	out := strings.TrimSpace(b.String())
	if out == "" {
		reason := cand.Get("finishReason").String()
		if reason == "" {
			reason = "unknown"
		}
		return "", fmt.Errorf("gemini returned empty text (finishReason=%s)", reason)
	}
	return out, nil
}
