package config

import (
	"os"
	"strings"
	"time"
)

// Config is the root configuration of the ClearGraph service.
type Config struct {
	App     AppConfig     `toml:"app"`
	AI      AIConfig      `toml:"ai"`
	Prompt  PromptConfig  `toml:"prompt"`
	Upload  UploadConfig  `toml:"upload"`
	Session SessionConfig `toml:"session"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
	LLMLog   string `toml:"llm_log_path"`
	LLMDump  bool   `toml:"llm_dump_payload"`
}

// AIConfig selects the multimodal inference backend.
type AIConfig struct {
	Provider       string            `toml:"provider"` // gemini | openai
	APIURL         string            `toml:"api_url"`
	APIKey         string            `toml:"api_key"`
	APIKeyEnv      string            `toml:"api_key_env"`
	Model          string            `toml:"model"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	ThinkingBudget int               `toml:"thinking_budget"`
	Headers        map[string]string `toml:"headers"`
}

// ResolveAPIKey returns ai.api_key, falling back to the environment variable named by
// ai.api_key_env.
func (a AIConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(a.APIKey); key != "" {
		return key
	}
	if name := strings.TrimSpace(a.APIKeyEnv); name != "" {
		return strings.TrimSpace(os.Getenv(name))
	}
	return ""
}

func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PromptConfig points at an optional prompt override file. Empty means the embedded
// defaults are used.
type PromptConfig struct {
	Path string `toml:"path"`
}

type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// SessionConfig bounds the in-memory workspace table.
type SessionConfig struct {
	Capacity   int    `toml:"capacity"`
	TTLMinutes int    `toml:"ttl_minutes"`
	CookieName string `toml:"cookie_name"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// keySet tracks which dotted paths were set explicitly in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
