package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	SetLevel("warn")
	defer SetLevel("info")

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
}

func TestInfoBlockWritesOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	InfoBlock("\n=====\n  title\n\nlast\n")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `msg="====="`)
	assert.Contains(t, lines[2], "msg=last")
}

func TestLogLLMRequestOmitsImagePayload(t *testing.T) {
	var buf bytes.Buffer
	SetLLMWriter(&buf)
	EnableLLMPayloadDump(false)
	defer SetLLMWriter(nil)

	LogLLMRequest("gemini", "trace-1", "system text", "user text",
		[]LLMImage{{MIMEType: "image/png", Bytes: 42}}, `{"secret":"payload"}`)

	out := buf.String()
	assert.Contains(t, out, "[LLM][request][gemini][trace-1]")
	assert.Contains(t, out, "--- SYSTEM ---\nsystem text")
	assert.Contains(t, out, "image/png, 42 bytes")
	assert.NotContains(t, out, "secret")
}

func TestLogLLMRequestDumpsPayloadWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetLLMWriter(&buf)
	EnableLLMPayloadDump(true)
	defer func() {
		SetLLMWriter(nil)
		EnableLLMPayloadDump(false)
	}()

	LogLLMRequest("openai", "", "s", "u", nil, `{"model":"x"}`)
	LogLLMResponse("openai", "", "raw text")

	out := buf.String()
	assert.Contains(t, out, "--- PAYLOAD ---")
	assert.Equal(t, 2, strings.Count(out, "====="))
	assert.Contains(t, out, "[LLM][response][openai]")
}

func TestLogLLMWithoutWriterIsNoop(t *testing.T) {
	SetLLMWriter(nil)
	assert.NotPanics(t, func() { LogLLMResponse("gemini", "t", "raw") })
}
