package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.AI.validate(); err != nil {
		return err
	}
	if err := c.Upload.validate(); err != nil {
		return err
	}
	return c.Session.validate()
}

func (a *AIConfig) validate() error {
	if _, ok := providerDefaults[a.Provider]; !ok {
		return fmt.Errorf("ai.provider must be one of gemini, openai (got %q)", a.Provider)
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("ai.model cannot be empty")
	}
	if strings.TrimSpace(a.APIURL) == "" {
		return fmt.Errorf("ai.api_url cannot be empty")
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be >= 0")
	}
	if a.ThinkingBudget < -1 {
		return fmt.Errorf("ai.thinking_budget must be >= -1")
	}
	return nil
}

func (u *UploadConfig) validate() error {
	if u.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be > 0")
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("session.capacity must be > 0")
	}
	if s.TTLMinutes <= 0 {
		return fmt.Errorf("session.ttl_minutes must be > 0")
	}
	if strings.TrimSpace(s.CookieName) == "" {
		return fmt.Errorf("session.cookie_name cannot be empty")
	}
	return nil
}
