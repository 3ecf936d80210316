package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cleargraph/internal/intake"
	"cleargraph/internal/logger"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
	"github.com/google/uuid"
)

type ManagerOptions struct {
	Capacity        int
	IdleTTL         time.Duration
	AnalysisTimeout time.Duration
}

// Manager owns every live workspace. Entries expire after IdleTTL without access and
// the least recently used one is evicted once Capacity is reached.
type Manager struct {
	digitizer Digitizer
	opts      ManagerOptions
	cache     *freelru.SyncedLRU[string, *Workspace]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func hashSessionID(id string) uint32 {
	return uint32(xxhash.Sum64String(id))
}

func NewManager(d Digitizer, opts ManagerOptions) (*Manager, error) {
	if d == nil {
		return nil, errors.New("workspace manager requires a digitizer")
	}
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("workspace capacity must be positive, got %d", opts.Capacity)
	}
	cache, err := freelru.NewSynced[string, *Workspace](uint32(opts.Capacity), hashSessionID)
	if err != nil {
		return nil, fmt.Errorf("create workspace cache: %w", err)
	}
	if opts.IdleTTL > 0 {
		cache.SetLifetime(opts.IdleTTL)
	}
	cache.SetOnEvict(func(id string, ws *Workspace) {
		logger.Debugf("[workspace] %s evicted", id)
		ws.abort()
	})
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{digitizer: d, opts: opts, cache: cache, ctx: ctx, cancel: cancel}, nil
}

// Get returns the workspace for id and refreshes its idle timer.
// GetAndRefresh revives expired entries, so Contains drops those first.
func (m *Manager) Get(id string) (*Workspace, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	if !m.cache.Contains(id) {
		return nil, false
	}
	return m.cache.GetAndRefresh(id, m.opts.IdleTTL)
}

func (m *Manager) Create() *Workspace {
	ws := New(uuid.NewString(), m.digitizer)
	m.cache.Add(ws.ID(), ws)
	return ws
}

// Acquire returns the workspace for id, creating a fresh one when id is unknown or
// has expired. created reports whether a new session id was issued.
func (m *Manager) Acquire(id string) (ws *Workspace, created bool) {
	if ws, ok := m.Get(id); ok {
		return ws, false
	}
	return m.Create(), true
}

// Submit starts the analysis of img in the background. It fails only with ErrBusy
// or when the manager is closed.
func (m *Manager) Submit(ws *Workspace, img intake.Image) error {
	if err := m.ctx.Err(); err != nil {
		return fmt.Errorf("workspace manager closed: %w", err)
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.opts.AnalysisTimeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.opts.AnalysisTimeout)
	} else {
		ctx, cancel = context.WithCancel(m.ctx)
	}
	gen, err := ws.begin(img, cancel)
	if err != nil {
		cancel()
		return err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		res, err := ws.digitizer.Digitize(ctx, img)
		ws.finish(gen, res, err)
	}()
	return nil
}

func (m *Manager) Len() int { return m.cache.Len() }

// Close cancels in-flight analyses and waits for them to record their outcome.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
	m.cache.Purge()
}
