package ports

import "context"

// ScriptClient is the store capability the runner depends on.
// The number of keys sent with a call is always len(keys).
type ScriptClient interface {
	// ScriptLoad registers body and returns its hash.
	// Loading the same body twice yields the same hash.
	ScriptLoad(ctx context.Context, body string) (string, error)

	// EvalSha executes a previously registered script.
	// Returns an error wrapping domain.ErrUnknownHash, or whose message starts
	// with NOSCRIPT, when the store no longer holds hash.
	EvalSha(ctx context.Context, hash string, keys []string, args []string) (any, error)

	// Eval executes body directly.
	Eval(ctx context.Context, body string, keys []string, args []string) (any, error)
}
