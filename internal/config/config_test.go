package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  log_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.AI.APIURL)
	assert.Equal(t, 2048, cfg.AI.ThinkingBudget)
	assert.Equal(t, 120*time.Second, cfg.AI.Timeout())
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxBytes)
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.Equal(t, "cleargraph_session", cfg.Session.CookieName)
}

func TestLoadKeepsExplicitZeroThinkingBudget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "ai:\n  thinking_budget: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.AI.ThinkingBudget)
}

func TestLoadOpenAIPreset(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "ai:\n  provider: OpenAI\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.APIURL)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  http_addr: \":9000\"\n  env: staging\nai:\n  model: base-model\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - base.yaml\nai:\n  model: override-model\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "override-model", cfg.AI.Model)
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	path := writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"provider": "ai:\n  provider: llamafile\n",
		"upload":   "upload:\n  max_bytes: -1\n",
		"session":  "session:\n  capacity: -5\n",
		"budget":   "ai:\n  thinking_budget: -3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadOptionalFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "API_KEY", cfg.AI.APIKeyEnv)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("CLEARGRAPH_TEST_KEY", " from-env ")
	assert.Equal(t, "inline", AIConfig{APIKey: "inline", APIKeyEnv: "CLEARGRAPH_TEST_KEY"}.ResolveAPIKey())
	assert.Equal(t, "from-env", AIConfig{APIKeyEnv: "CLEARGRAPH_TEST_KEY"}.ResolveAPIKey())
	assert.Equal(t, "", AIConfig{}.ResolveAPIKey())
}
