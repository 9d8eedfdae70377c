package testutils

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/redscript/pkg/ports"
)

// Spy wraps a ports.ScriptClient and counts calls per operation.
type Spy struct {
	Next ports.ScriptClient

	loads    atomic.Int32
	evalShas atomic.Int32
	evals    atomic.Int32
}

// NewSpy wraps next.
func NewSpy(next ports.ScriptClient) *Spy {
	return &Spy{Next: next}
}

func (s *Spy) ScriptLoad(ctx context.Context, body string) (string, error) {
	s.loads.Add(1)
	return s.Next.ScriptLoad(ctx, body)
}

func (s *Spy) EvalSha(ctx context.Context, hash string, keys []string, args []string) (any, error) {
	s.evalShas.Add(1)
	return s.Next.EvalSha(ctx, hash, keys, args)
}

func (s *Spy) Eval(ctx context.Context, body string, keys []string, args []string) (any, error) {
	s.evals.Add(1)
	return s.Next.Eval(ctx, body, keys, args)
}

// Counts returns the number of ScriptLoad, EvalSha and Eval calls.
func (s *Spy) Counts() (loads, evalShas, evals int) {
	return int(s.loads.Load()), int(s.evalShas.Load()), int(s.evals.Load())
}

// Reset zeroes the counters.
func (s *Spy) Reset() {
	s.loads.Store(0)
	s.evalShas.Store(0)
	s.evals.Store(0)
}
