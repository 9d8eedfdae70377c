// Package config loads runner settings from a YAML file and the environment.
//
// A minimal file:
//
//	base: ./scripts
//	shared: common
//	redis:
//	  addr: localhost:6379
//
// shared may also be a mapping with path, keys and args (argv is accepted
// for args).
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/redscript"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvRedisAddr     = "REDSCRIPT_REDIS_ADDR"
	EnvRedisPassword = "REDSCRIPT_REDIS_PASSWORD"
	EnvBase          = "REDSCRIPT_BASE"
)

type overrides struct {
	RedisAddr     string `env:"REDSCRIPT_REDIS_ADDR"`
	RedisPassword string `env:"REDSCRIPT_REDIS_PASSWORD"`
	Base          string `env:"REDSCRIPT_BASE"`
}

// DefaultRedisAddr is used when neither the file nor the environment set one.
const DefaultRedisAddr = "localhost:6379"

// Config is the decoded configuration file.
type Config struct {
	Base      string  `mapstructure:"base"`
	Extension string  `mapstructure:"extension"`
	Shared    *Shared `mapstructure:"shared"`
	Redis     Redis   `mapstructure:"redis"`
}

// Shared describes the prelude composed in front of every script.
type Shared struct {
	Path string   `mapstructure:"path"`
	Keys []string `mapstructure:"keys"`
	Args []string `mapstructure:"args"`
}

// Redis holds connection settings.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// ReadOnly runs scripts with EVALSHA_RO / EVAL_RO, for replicas.
	ReadOnly bool `mapstructure:"read_only"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Redis: Redis{Addr: DefaultRedisAddr},
	}
}

// Load reads the file at path and applies environment overrides.
// An empty path yields Default with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML content on top of Default.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if raw == nil {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       sharedHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	if cfg.Shared != nil && cfg.Shared.Path == "" {
		return nil, errors.New("shared: path is required")
	}
	return cfg, nil
}

// sharedHook accepts a bare string for shared and argv as an alias of args.
func sharedHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Shared{}) {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return map[string]any{"path": v}, nil
	case map[string]any:
		argv, ok := v["argv"]
		if !ok {
			return data, nil
		}
		if _, both := v["args"]; both {
			return nil, errors.New("shared: args and argv are mutually exclusive")
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		delete(out, "argv")
		out["args"] = argv
		return out, nil
	}
	return data, nil
}

// ApplyEnv overrides settings from the environment. Empty variables are ignored.
func (c *Config) ApplyEnv() error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.RedisAddr != "" {
		c.Redis.Addr = o.RedisAddr
	}
	if o.RedisPassword != "" {
		c.Redis.Password = o.RedisPassword
	}
	if o.Base != "" {
		c.Base = o.Base
	}
	return nil
}

// SharedConfig converts the prelude settings to their domain form.
func (c *Config) SharedConfig() domain.SharedConfig {
	if c.Shared == nil {
		return domain.SharedConfig{}
	}
	return domain.SharedConfig{
		Path: c.Shared.Path,
		Keys: domain.Values(c.Shared.Keys...),
		Args: domain.Values(c.Shared.Args...),
	}
}

// Options converts the configuration to runner options.
func (c *Config) Options() []redscript.Option {
	var opts []redscript.Option
	if c.Base != "" {
		opts = append(opts, redscript.WithBase(c.Base))
	}
	if c.Extension != "" {
		opts = append(opts, redscript.WithExtension(c.Extension))
	}
	if c.Shared != nil {
		opts = append(opts, redscript.WithShared(c.SharedConfig()))
	}
	return opts
}
