package app

import (
	"fmt"
	"strings"
	"time"

	"cleargraph/internal/logger"
)

type StartupSummary struct {
	Provider        string
	APIKeyPresent   bool
	HTTPAddr        string
	PromptSource    string
	PromptVersion   int64
	UploadLimit     int64
	SessionCapacity int
	SessionTTL      time.Duration
	AnalysisTimeout time.Duration
}

// Print writes the banner to the application log, so it also reaches app.log_path.
func (s *StartupSummary) Print() {
	logger.InfoBlock(s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	title := "STARTUP SUMMARY"
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "%*s\n", 30+len(title)/2, title)
	b.WriteString(strings.Repeat("=", 60) + "\n")

	b.WriteString("[MODEL]\n")
	fmt.Fprintf(&b, "  provider: %s\n", s.Provider)
	key := "configured"
	if !s.APIKeyPresent {
		key = "MISSING (requests will fail)"
	}
	fmt.Fprintf(&b, "  api key:  %s\n", key)
	fmt.Fprintf(&b, "  timeout:  %s\n", formatDuration(s.AnalysisTimeout))
	fmt.Fprintf(&b, "  prompts:  %s (v%d)\n", s.PromptSource, s.PromptVersion)
	b.WriteString("\n[HTTP]\n")
	fmt.Fprintf(&b, "  listen:   %s\n", s.HTTPAddr)
	fmt.Fprintf(&b, "  upload:   %s max\n", formatBytes(s.UploadLimit))
	fmt.Fprintf(&b, "  sessions: %d, idle ttl %s\n", s.SessionCapacity, formatDuration(s.SessionTTL))
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
