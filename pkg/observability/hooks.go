package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/redscript/pkg/domain"
)

// Chain combines several hook sets into one. Hooks run in the given order.
func Chain(sets ...domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnRegister: func(ctx context.Context, e *domain.ScriptEvent) {
			for _, h := range sets {
				if h.OnRegister != nil {
					h.OnRegister(ctx, e)
				}
			}
		},
		OnFallback: func(ctx context.Context, e *domain.ScriptEvent) {
			for _, h := range sets {
				if h.OnFallback != nil {
					h.OnFallback(ctx, e)
				}
			}
		},
		OnFailure: func(ctx context.Context, e *domain.ScriptEvent) {
			for _, h := range sets {
				if h.OnFailure != nil {
					h.OnFailure(ctx, e)
				}
			}
		},
	}
}

// LogHooks writes every event to logger at Info level, failures at Warn.
func LogHooks(logger *slog.Logger) domain.Hooks {
	log := func(level slog.Level) func(context.Context, *domain.ScriptEvent) {
		return func(ctx context.Context, e *domain.ScriptEvent) {
			attrs := []any{"event", e.Type, "script", e.Script}
			if e.Hash != "" {
				attrs = append(attrs, "hash", e.Hash)
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.Log(ctx, level, "script event", attrs...)
		}
	}
	return domain.Hooks{
		OnRegister: log(slog.LevelInfo),
		OnFallback: log(slog.LevelInfo),
		OnFailure:  log(slog.LevelWarn),
	}
}
