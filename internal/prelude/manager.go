// Package prelude loads and memoizes the shared script composed in front of
// every script a runner executes.
package prelude

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/redscript/internal/compose"
	"github.com/aretw0/redscript/internal/flight"
	"github.com/aretw0/redscript/internal/resolve"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/aretw0/redscript/pkg/ports"
	"golang.org/x/sync/singleflight"
)

// Manager owns the prelude of one runner. The prelude is read once, on first
// use; a failed read is not remembered, so the next call tries again.
type Manager struct {
	cfg    domain.SharedConfig
	path   string
	reader ports.SourceReader

	group singleflight.Group
	mu    sync.RWMutex
	state *domain.PreludeState
}

// New creates a Manager. A zero cfg means no prelude.
func New(cfg domain.SharedConfig, resolver *resolve.Resolver, reader ports.SourceReader) *Manager {
	m := &Manager{cfg: cfg, reader: reader}
	if cfg.Enabled() {
		m.path = resolver.Resolve(cfg.Path)
	}
	return m
}

// Path returns the resolved prelude path, or "" without a prelude.
func (m *Manager) Path() string {
	return m.path
}

// CacheKey returns the registration table this prelude configuration writes into.
func (m *Manager) CacheKey() domain.CacheKey {
	return domain.CacheKeyFor(m.path, len(m.cfg.Keys), len(m.cfg.Args))
}

// Params returns the prelude's reserved keys and args. Generators are left
// unevaluated.
func (m *Manager) Params() (keys, args []domain.Param) {
	return m.cfg.Keys, m.cfg.Args
}

// Get returns the loaded prelude, loading it on first use. Concurrent first
// callers share a single read. Returns nil without a prelude.
func (m *Manager) Get(ctx context.Context) (*domain.PreludeState, error) {
	if m.path == "" {
		return nil, nil
	}
	if state := m.Loaded(); state != nil {
		return state, nil
	}
	return flight.Do(ctx, &m.group, m.path, m.load)
}

// Loaded returns the prelude if it has already been loaded, without blocking.
func (m *Manager) Loaded() *domain.PreludeState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) load(ctx context.Context) (*domain.PreludeState, error) {
	if state := m.Loaded(); state != nil {
		return state, nil
	}

	content, err := m.reader.ReadText(ctx, m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared script: %w", err)
	}

	state := &domain.PreludeState{
		Path:    m.path,
		Content: content,
		NumKeys: len(m.cfg.Keys),
		NumArgs: len(m.cfg.Args),
	}
	state.LineOffset = compose.LineOffset(state)

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	return state, nil
}
