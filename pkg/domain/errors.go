package domain

import "errors"

// ErrSourceNotFound is returned when a script or prelude cannot be read.
var ErrSourceNotFound = errors.New("script source not found")

// ErrUnknownHash is returned by a ScriptClient when the store no longer knows a hash.
var ErrUnknownHash = errors.New("unknown script hash")

// ScriptError is a store failure whose message had its embedded script
// positions rewritten to file:line pairs.
type ScriptError struct {
	Script  string
	Prelude string
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
