package config

import "strings"

const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppHTTPAddr    = ":8080"
	defaultAIProvider     = ProviderGemini
	defaultAIKeyEnv       = "API_KEY"
	defaultAITimeout      = 120
	defaultThinkingBudget = 2048
	defaultUploadMaxBytes = 10 << 20
	defaultSessionCap     = 1024
	defaultSessionTTL     = 60
	defaultSessionCookie  = "cleargraph_session"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var providerDefaults = map[string]struct{ url, model string }{
	ProviderGemini: {url: "https://generativelanguage.googleapis.com/v1beta", model: "gemini-2.5-flash"},
	ProviderOpenAI: {url: "https://api.openai.com/v1", model: "gpt-4o"},
}

// Default returns a configuration with every default applied, used when no config file
// exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(nil)
	return &cfg
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Upload.applyDefaults(keys)
	c.Session.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (a *AIConfig) applyDefaults(keys keySet) {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	applyFieldDefaults(keys,
		stringFieldDefault("ai.provider", &a.Provider, defaultAIProvider),
		stringFieldDefault("ai.api_key_env", &a.APIKeyEnv, defaultAIKeyEnv),
		intFieldDefault("ai.timeout_seconds", &a.TimeoutSeconds, defaultAITimeout),
		intFieldDefault("ai.thinking_budget", &a.ThinkingBudget, defaultThinkingBudget),
	)
	if preset, ok := providerDefaults[a.Provider]; ok {
		if strings.TrimSpace(a.APIURL) == "" {
			a.APIURL = preset.url
		}
		if strings.TrimSpace(a.Model) == "" {
			a.Model = preset.model
		}
	}
}

func (u *UploadConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys, intFieldDefault("upload.max_bytes", &u.MaxBytes, defaultUploadMaxBytes))
}

func (s *SessionConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		intFieldDefault("session.capacity", &s.Capacity, defaultSessionCap),
		intFieldDefault("session.ttl_minutes", &s.TTLMinutes, defaultSessionTTL),
		stringFieldDefault("session.cookie_name", &s.CookieName, defaultSessionCookie),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// intFieldDefault only fills keys absent from the files, so an explicit 0 survives.
func intFieldDefault[T int | int64](key string, target *T, def T) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
