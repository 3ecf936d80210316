package provider

import (
	"net/http"
	"strings"
	"time"

	"cleargraph/internal/logger"
)

const defaultTimeout = 60 * time.Second

func httpClient(c *http.Client, timeout time.Duration) *http.Client {
	if c != nil {
		return c
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// maskHeaders hides credentials, keeping the last four characters.
func maskHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "key") || strings.Contains(lk, "token") || strings.Contains(lk, "auth") {
			tail := v
			if len(v) > 4 {
				tail = v[len(v)-4:]
			}
			v = "****" + tail
		}
		out[k] = v
	}
	return out
}

func llmImages(images []ImagePayload) []logger.LLMImage {
	out := make([]logger.LLMImage, 0, len(images))
	for _, img := range images {
		out = append(out, logger.LLMImage{MIMEType: img.MIMEType, Bytes: len(img.Data) * 3 / 4})
	}
	return out
}
