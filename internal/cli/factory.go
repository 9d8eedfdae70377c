// Package cli holds the wiring shared by the redscript commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/redscript"
	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/pkg/adapters/redis"
	"github.com/aretw0/redscript/pkg/config"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/aretw0/redscript/pkg/observability"
)

// Options are the settings given on the command line. Non-empty values win
// over the configuration file.
type Options struct {
	ConfigPath string
	RedisAddr  string
	Base       string
	Shared     string
	LogLevel   string

	// Hooks are chained after the logging hooks.
	Hooks domain.Hooks
}

// Env is a ready-to-use runner with the resources behind it.
type Env struct {
	Config *config.Config
	Runner *redscript.Runner
	Logger *slog.Logger

	client *redis.Client
}

// NewEnv loads the configuration, connects to Redis and builds the Runner.
func NewEnv(opts Options) (*Env, error) {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)

	client := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithReadOnly(cfg.Redis.ReadOnly))
	logger.Debug("redis client created", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB, "read_only", cfg.Redis.ReadOnly)

	runnerOpts := append(cfg.Options(),
		redscript.WithLogger(logger),
		redscript.WithHooks(observability.Chain(observability.LogHooks(logger), opts.Hooks)),
	)

	return &Env{
		Config: cfg,
		Runner: redscript.New(client, runnerOpts...),
		Logger: logger,
		client: client,
	}, nil
}

// Close releases the Redis connection.
func (e *Env) Close() error {
	if err := e.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

func applyFlags(cfg *config.Config, opts Options) {
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	if opts.Base != "" {
		cfg.Base = opts.Base
	}
	if opts.Shared != "" {
		cfg.Shared = &config.Shared{Path: opts.Shared}
	}
}
