package testutils

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/redscript/pkg/domain"
)

// Call records one request made to a FakeClient.
type Call struct {
	Op   string // "load", "evalsha" or "eval"
	Arg  string // body or hash
	Keys []string
	Args []string
}

// FakeClient is an in-memory ports.ScriptClient that records every call.
// Safe for concurrent use.
type FakeClient struct {
	mu      sync.Mutex
	scripts map[string]string
	calls   []Call

	// LoadDelay slows every ScriptLoad, to widen race windows.
	LoadDelay time.Duration
	// LoadErr, if set, is returned by ScriptLoad.
	LoadErr error
	// ExecErr, if set, is returned by EvalSha (for known hashes) and Eval.
	ExecErr error
	// Result is returned by successful executions. Nil echoes keys and args.
	Result any
}

// NewFakeClient creates an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{scripts: make(map[string]string)}
}

func (c *FakeClient) record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *FakeClient) ScriptLoad(ctx context.Context, body string) (string, error) {
	if c.LoadDelay > 0 {
		time.Sleep(c.LoadDelay)
	}
	c.record(Call{Op: "load", Arg: body})
	if c.LoadErr != nil {
		return "", c.LoadErr
	}

	sum := sha1.Sum([]byte(body))
	hash := hex.EncodeToString(sum[:])

	c.mu.Lock()
	c.scripts[hash] = body
	c.mu.Unlock()
	return hash, nil
}

func (c *FakeClient) EvalSha(ctx context.Context, hash string, keys []string, args []string) (any, error) {
	c.record(Call{Op: "evalsha", Arg: hash, Keys: keys, Args: args})

	c.mu.Lock()
	_, ok := c.scripts[hash]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: NOSCRIPT No matching script. Please use EVAL.", domain.ErrUnknownHash)
	}
	return c.exec(keys, args)
}

func (c *FakeClient) Eval(ctx context.Context, body string, keys []string, args []string) (any, error) {
	c.record(Call{Op: "eval", Arg: body, Keys: keys, Args: args})
	return c.exec(keys, args)
}

func (c *FakeClient) exec(keys, args []string) (any, error) {
	if c.ExecErr != nil {
		return nil, c.ExecErr
	}
	if c.Result != nil {
		return c.Result, nil
	}
	return []any{keys, args}, nil
}

// Forget drops every registered script, like SCRIPT FLUSH.
func (c *FakeClient) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts = make(map[string]string)
}

// Calls returns the recorded calls, optionally filtered by op.
func (c *FakeClient) Calls(op string) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if op == "" || call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

// Count returns the number of calls for op.
func (c *FakeClient) Count(op string) int {
	return len(c.Calls(op))
}

// Reset clears the recorded calls.
func (c *FakeClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
