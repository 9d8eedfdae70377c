package redscript

import (
	"context"
	"log/slog"

	"github.com/aretw0/redscript/internal/cache"
	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/internal/prelude"
	"github.com/aretw0/redscript/internal/resolve"
	"github.com/aretw0/redscript/internal/runtime"
	"github.com/aretw0/redscript/pkg/adapters/file"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/aretw0/redscript/pkg/ports"
)

// Registry holds the registration tables shared between runners.
type Registry = cache.Registry

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return cache.NewRegistry()
}

// DefaultRegistry is used by runners created without WithRegistry.
var DefaultRegistry = NewRegistry()

// Runner is the high-level entry point for executing scripts.
// It is safe for concurrent use.
type Runner struct {
	engine  *runtime.Engine
	prelude *prelude.Manager
	cache   *cache.Cache

	resolver  *resolve.Resolver
	base      string
	extension string
	shared    domain.SharedConfig
	reader    ports.SourceReader
	registry  *Registry
	hooks     domain.Hooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithBase sets the directory relative script paths resolve against.
func WithBase(dir string) Option {
	return func(r *Runner) {
		r.base = dir
	}
}

// WithExtension sets the extension appended to paths without one (default ".lua").
func WithExtension(ext string) Option {
	return func(r *Runner) {
		r.extension = ext
	}
}

// WithShared configures the prelude composed in front of every script.
func WithShared(cfg domain.SharedConfig) Option {
	return func(r *Runner) {
		r.shared = cfg
	}
}

// WithSharedPath configures a prelude that reserves no keys or args.
func WithSharedPath(path string) Option {
	return WithShared(domain.SharedConfig{Path: path})
}

// WithReader replaces the filesystem as the source of scripts.
func WithReader(reader ports.SourceReader) Option {
	return func(r *Runner) {
		r.reader = reader
	}
}

// WithRegistry sets the registry this runner shares registrations through.
func WithRegistry(registry *Registry) Option {
	return func(r *Runner) {
		r.registry = registry
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner executing scripts through client.
func New(client ports.ScriptClient, opts ...Option) *Runner {
	r := &Runner{
		reader:   file.NewReader(),
		registry: DefaultRegistry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.resolver = resolve.New(r.base, r.extension)
	r.prelude = prelude.New(r.shared, r.resolver, r.reader)
	r.cache = cache.New(r.registry, r.prelude, r.reader, client,
		cache.WithHooks(r.hooks),
		cache.WithLogger(r.logger),
	)
	r.engine = runtime.NewEngine(r.resolver, r.prelude, r.cache, client,
		runtime.WithHooks(r.hooks),
		runtime.WithLogger(r.logger),
	)
	return r
}

// Run executes the script at path with the given keys and args and returns
// the store's reply. Script errors carry file:line positions of the original
// sources.
func (r *Runner) Run(ctx context.Context, path string, keys, args []domain.Param) (any, error) {
	return r.engine.Run(ctx, path, keys, args)
}

// RunStrings is Run with plain string keys and args.
func (r *Runner) RunStrings(ctx context.Context, path string, keys, args []string) (any, error) {
	return r.engine.Run(ctx, path, domain.Values(keys...), domain.Values(args...))
}

// Resolve returns the canonical path Run would use for path.
func (r *Runner) Resolve(path string) string {
	return r.resolver.Resolve(path)
}

// CacheKey returns the key of the registration table this runner uses.
func (r *Runner) CacheKey() domain.CacheKey {
	return r.prelude.CacheKey()
}
