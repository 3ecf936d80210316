package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu          sync.Mutex
	llmLog         *log.Logger
	llmDumpPayload bool
)

// SetLLMWriter sets the destination of the model exchange log. nil disables it.
func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

// EnableLLMPayloadDump controls whether raw request bodies are written to the LLM log.
func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDumpPayload = enabled
	llmMu.Unlock()
}

type llmSection struct {
	Title string
	Body  string
}

// LLMImage describes an attached image without its payload.
type LLMImage struct {
	MIMEType string
	Bytes    int
}

func writeLLM(kind, provider, trace string, sections []llmSection) {
	llmMu.Lock()
	out := llmLog
	llmMu.Unlock()
	if out == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	for _, tag := range []string{kind, provider, trace} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	out.Print(b.String())
}

// LogLLMRequest records one outbound model request. Image payloads are never written,
// only their type and size.
func LogLLMRequest(provider, trace, systemPrompt, userPrompt string, images []LLMImage, payload string) {
	sections := []llmSection{
		{Title: "SYSTEM", Body: systemPrompt},
		{Title: "USER", Body: userPrompt},
	}
	for i, img := range images {
		sections = append(sections, llmSection{
			Title: fmt.Sprintf("IMAGE#%d", i+1),
			Body:  fmt.Sprintf("%s, %d bytes", img.MIMEType, img.Bytes),
		})
	}
	llmMu.Lock()
	dump := llmDumpPayload
	llmMu.Unlock()
	if dump && strings.TrimSpace(payload) != "" {
		sections = append(sections, llmSection{Title: "PAYLOAD", Body: payload})
	}
	writeLLM("request", provider, trace, sections)
}

// LogLLMResponse records the raw text returned by the model.
func LogLLMResponse(provider, trace, raw string) {
	writeLLM("response", provider, trace, []llmSection{{Title: "RAW", Body: raw}})
}
