// Package prompt owns the instruction text sent with every digitize request. The
// embedded defaults can be overridden by a YAML file that is reloaded when it changes.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cleargraph/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Fields holds the descriptions attached to each property of the output schema.
type Fields struct {
	Title       string `yaml:"title"`
	Explanation string `yaml:"explanation"`
	SVGContent  string `yaml:"svg_content"`
}

// Set is one complete prompt configuration.
type Set struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
	Fields Fields `yaml:"fields"`
}

// Snapshot is the prompt set currently in force.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Source   string
	Set      Set
}

// Default returns the embedded prompt set.
func Default() Set {
	set, err := decode(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt defaults are invalid: %v", err))
	}
	return merge(set, Set{})
}

// Registry serves the active prompt set.
type Registry struct {
	path string
	v    *viper.Viper

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRegistry loads the override at path on top of the defaults and watches it for
// changes. An empty path serves the defaults only.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path)}
	if r.path == "" {
		r.snapshot = Snapshot{Version: 1, LoadedAt: time.Now(), Source: "embedded", Set: Default()}
		return r, nil
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read prompt override failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("prompt reload failed (%s): %v", evt.Name, err)
			return
		}
		logger.Infof("prompt override reloaded from %s (version %d)", evt.Name, r.Snapshot().Version)
	})
	v.WatchConfig()
	r.v = v
	return r, nil
}

// Current returns the prompt set in force.
func (r *Registry) Current() Set {
	return r.Snapshot().Set
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Registry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read prompt override failed: %w", err)
	}
	override, err := decode(raw)
	if err != nil {
		return fmt.Errorf("parse prompt override failed: %w", err)
	}
	set := merge(Default(), override)
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Source:   r.path,
		Set:      set,
	}
	r.mu.Unlock()
	return nil
}

func decode(raw []byte) (Set, error) {
	var set Set
	if len(bytes.TrimSpace(raw)) == 0 {
		return set, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return Set{}, err
	}
	return set, nil
}

// merge fills blank override fields from base. Every field comes back trimmed.
func merge(base, override Set) Set {
	pick := func(over, def string) string {
		if strings.TrimSpace(over) != "" {
			return strings.TrimSpace(over)
		}
		return strings.TrimSpace(def)
	}
	return Set{
		System: pick(override.System, base.System),
		User:   pick(override.User, base.User),
		Fields: Fields{
			Title:       pick(override.Fields.Title, base.Fields.Title),
			Explanation: pick(override.Fields.Explanation, base.Fields.Explanation),
			SVGContent:  pick(override.Fields.SVGContent, base.Fields.SVGContent),
		},
	}
}
