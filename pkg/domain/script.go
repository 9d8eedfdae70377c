package domain

import "fmt"

// SharedConfig declares the prelude script and the fixed prefix of keys and
// args it consumes. An empty Path means no prelude.
type SharedConfig struct {
	Path string
	Keys []Param
	Args []Param
}

// Enabled reports whether a prelude is configured.
func (c SharedConfig) Enabled() bool {
	return c.Path != ""
}

// PreludeState is the loaded prelude. LineOffset is the number of lines that
// precede the first line of a script body in the combined text.
type PreludeState struct {
	Path       string
	Content    string
	LineOffset int
	NumKeys    int
	NumArgs    int
}

// Slices reports whether the prelude reserves any keys or args, in which case
// the composed script re-binds KEYS and ARGV after the prelude.
func (p *PreludeState) Slices() bool {
	return p.NumKeys > 0 || p.NumArgs > 0
}

// Registration is the result of loading one combined script into the store.
type Registration struct {
	Hash         string
	Source       string
	CombinedBody string
}

// CacheKey identifies a registration table. Runners whose preludes share the
// same path and key/arg counts produce byte-identical scripts and share a key.
type CacheKey string

// DefaultCacheKey is used by every runner without a prelude.
const DefaultCacheKey CacheKey = "default"

// CacheKeyFor derives the CacheKey for a prelude path (already resolved) and
// its declared key/arg counts.
func CacheKeyFor(preludePath string, numKeys, numArgs int) CacheKey {
	if preludePath == "" {
		return DefaultCacheKey
	}
	return CacheKey(fmt.Sprintf("%s|%d|%d", preludePath, numKeys, numArgs))
}
