package domain

// Param is a key or argument passed to a script.
// It holds either a fixed value or a generator that is invoked on every run.
// The zero value is the empty string.
type Param struct {
	value string
	gen   func() string
}

// Value returns a Param with a fixed value.
func Value(v string) Param {
	return Param{value: v}
}

// Generated returns a Param whose value is produced by fn each time a script runs.
func Generated(fn func() string) Param {
	return Param{gen: fn}
}

// Values wraps plain strings as fixed Params.
func Values(vs ...string) []Param {
	params := make([]Param, len(vs))
	for i, v := range vs {
		params[i] = Value(v)
	}
	return params
}

// Resolve returns the value to send to the store, invoking the generator if any.
func (p Param) Resolve() string {
	if p.gen != nil {
		return p.gen()
	}
	return p.value
}

// Materialize resolves every Param in order.
// Generators are invoked exactly once per call.
func Materialize(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Resolve()
	}
	return out
}
