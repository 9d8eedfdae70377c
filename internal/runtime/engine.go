package runtime

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aretw0/redscript/internal/cache"
	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/internal/prelude"
	"github.com/aretw0/redscript/internal/resolve"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/aretw0/redscript/pkg/ports"
)

// unknownHashPrefix starts the store's reply when it no longer holds a hash.
const unknownHashPrefix = "NOSCRIPT"

// Engine executes scripts by hash, falling back to the full body when the
// store has forgotten the hash.
type Engine struct {
	resolver *resolve.Resolver
	prelude  *prelude.Manager
	cache    *cache.Cache
	client   ports.ScriptClient
	hooks    domain.Hooks
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(resolver *resolve.Resolver, p *prelude.Manager, c *cache.Cache, client ports.ScriptClient, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		prelude:  p,
		cache:    c,
		client:   client,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the script at path. The prelude's reserved keys and args are
// placed in front of the caller's, and every generator is invoked once.
// The store's result is returned as is.
func (e *Engine) Run(ctx context.Context, path string, keys, args []domain.Param) (any, error) {
	script := e.resolver.Resolve(path)

	sharedKeys, sharedArgs := e.prelude.Params()
	finalKeys := domain.Materialize(concat(sharedKeys, keys))
	finalArgs := domain.Materialize(concat(sharedArgs, args))

	reg, err := e.cache.Load(ctx, script)
	if err != nil {
		return nil, e.fail(ctx, script, err)
	}

	res, err := e.client.EvalSha(ctx, reg.Hash, finalKeys, finalArgs)
	if err != nil && IsUnknownHash(err) {
		e.logger.Debug("script hash unknown to store, sending body", "script", script, "hash", reg.Hash)
		e.hooks.Emit(ctx, &domain.ScriptEvent{Type: domain.EventFallback, Script: script, Hash: reg.Hash})
		res, err = e.client.Eval(ctx, reg.CombinedBody, finalKeys, finalArgs)
	}
	if err != nil {
		return nil, e.fail(ctx, script, err)
	}
	return res, nil
}

func (e *Engine) fail(ctx context.Context, script string, err error) error {
	var shared *domain.PreludeState
	if e.prelude.Path() != "" {
		// The registration may come from another runner sharing the table,
		// in which case this runner has not read its prelude yet.
		state, perr := e.prelude.Get(ctx)
		if perr != nil {
			return err
		}
		shared = state
	}

	remapped := Remap(err, script, shared)
	e.logger.Debug("script failed", "script", script, "err", remapped)
	e.hooks.Emit(ctx, &domain.ScriptEvent{Type: domain.EventFailure, Script: script, Err: remapped})
	return remapped
}

// IsUnknownHash reports whether err is the store saying it lost a script hash.
func IsUnknownHash(err error) bool {
	if errors.Is(err, domain.ErrUnknownHash) {
		return true
	}
	return strings.HasPrefix(strings.TrimPrefix(err.Error(), "ERR "), unknownHashPrefix)
}

func concat(a, b []domain.Param) []domain.Param {
	out := make([]domain.Param, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
