package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/redscript/internal/compose"
	"github.com/aretw0/redscript/internal/flight"
	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/internal/prelude"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/aretw0/redscript/pkg/ports"
)

// Cache is one runner's view of its Table.
type Cache struct {
	table   *Table
	prelude *prelude.Manager
	reader  ports.SourceReader
	client  ports.ScriptClient
	hooks   domain.Hooks
	logger  *slog.Logger
}

// Option configures the Cache.
type Option func(*Cache)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *Cache) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the Cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache writing into the table selected by the prelude's CacheKey.
func New(registry *Registry, p *prelude.Manager, reader ports.SourceReader, client ports.ScriptClient, opts ...Option) *Cache {
	c := &Cache{
		table:   registry.Table(p.CacheKey()),
		prelude: p,
		reader:  reader,
		client:  client,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the table this cache writes into.
func (c *Cache) Table() *Table {
	return c.table
}

// Load returns the registration for path, registering it on first use.
// Concurrent callers for the same path share one registration. A failed
// registration is not stored, so a later Load starts over.
func (c *Cache) Load(ctx context.Context, path string) (*domain.Registration, error) {
	if reg, ok := c.table.Get(path); ok {
		return reg, nil
	}
	return flight.Do(ctx, &c.table.group, path, func(ctx context.Context) (*domain.Registration, error) {
		return c.register(ctx, path)
	})
}

func (c *Cache) register(ctx context.Context, path string) (*domain.Registration, error) {
	// A flight that finished just before ours started may already have stored it.
	if reg, ok := c.table.Get(path); ok {
		return reg, nil
	}

	shared, err := c.prelude.Get(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.reader.ReadText(ctx, path)
	if err != nil {
		return nil, err
	}

	combined := compose.Combine(shared, body)
	hash, err := c.client.ScriptLoad(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("failed to register script %s: %w", path, err)
	}

	reg := &domain.Registration{Hash: hash, Source: path, CombinedBody: combined}
	c.table.put(path, reg)

	c.logger.Debug("script registered", "script", path, "hash", hash)
	c.hooks.Emit(ctx, &domain.ScriptEvent{Type: domain.EventRegister, Script: path, Hash: hash})
	return reg, nil
}
