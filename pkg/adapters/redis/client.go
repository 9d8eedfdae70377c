package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/redscript/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Client implements ports.ScriptClient using Redis.
type Client struct {
	scripter backend.Scripter
	closer   func() error
	readOnly bool
}

type Option func(*Client)

// WithReadOnly routes executions through EVALSHA_RO / EVAL_RO.
// Useful against read replicas.
func WithReadOnly(readOnly bool) Option {
	return func(c *Client) {
		c.readOnly = readOnly
	}
}

// New creates a new Redis script client with its own connection pool.
func New(address, password string, db int, opts ...Option) *Client {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	c := NewFromClient(rdb, opts...)
	c.closer = rdb.Close
	return c
}

// NewFromClient creates a new script client from an existing client.
// Any go-redis client works (single node, cluster, ring); the caller keeps
// ownership of it.
func NewFromClient(scripter backend.Scripter, opts ...Option) *Client {
	c := &Client{
		scripter: scripter,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ScriptLoad registers body with SCRIPT LOAD.
func (c *Client) ScriptLoad(ctx context.Context, body string) (string, error) {
	return c.scripter.ScriptLoad(ctx, body).Result()
}

// EvalSha runs a registered script. A NOSCRIPT reply is wrapped with
// domain.ErrUnknownHash.
func (c *Client) EvalSha(ctx context.Context, hash string, keys []string, args []string) (any, error) {
	var cmd *backend.Cmd
	if c.readOnly {
		cmd = c.scripter.EvalShaRO(ctx, hash, keys, toInterfaces(args)...)
	} else {
		cmd = c.scripter.EvalSha(ctx, hash, keys, toInterfaces(args)...)
	}
	res, err := result(cmd)
	if err != nil && backend.HasErrorPrefix(err, "NOSCRIPT") {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnknownHash, err)
	}
	return res, err
}

// Eval runs body directly.
func (c *Client) Eval(ctx context.Context, body string, keys []string, args []string) (any, error) {
	if c.readOnly {
		return result(c.scripter.EvalRO(ctx, body, keys, toInterfaces(args)...))
	}
	return result(c.scripter.Eval(ctx, body, keys, toInterfaces(args)...))
}

// Close closes the underlying client if it was created by New.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// result treats a nil reply as a nil value rather than an error.
func result(cmd *backend.Cmd) (any, error) {
	res, err := cmd.Result()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	return res, err
}

func toInterfaces(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
