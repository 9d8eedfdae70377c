// Package compose builds the text sent to the store from a prelude and a script body.
package compose

import (
	"fmt"
	"strings"

	"github.com/aretw0/redscript/pkg/domain"
)

// PreambleLines is the number of lines Preamble produces.
const PreambleLines = 2

// Preamble re-binds KEYS and ARGV to what follows the prelude's own reserved prefix.
func Preamble(numKeys, numArgs int) string {
	return fmt.Sprintf("local KEYS = { unpack(KEYS, %d) }\nlocal ARGV = { unpack(ARGV, %d) }", numKeys+1, numArgs+1)
}

// Combine returns body prefixed with the prelude, if any. The slicing preamble
// is inserted between them when the prelude reserves keys or args.
func Combine(prelude *domain.PreludeState, body string) string {
	if prelude == nil {
		return body
	}
	parts := []string{prelude.Content}
	if prelude.Slices() {
		parts = append(parts, Preamble(prelude.NumKeys, prelude.NumArgs))
	}
	parts = append(parts, body)
	return strings.Join(parts, "\n")
}

// LineCount counts newline-delimited lines. It matches how many lines text
// occupies in front of anything joined after it with a newline.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// LineOffset is the number of combined lines that precede the body.
func LineOffset(prelude *domain.PreludeState) int {
	offset := LineCount(prelude.Content)
	if prelude.Slices() {
		offset += PreambleLines
	}
	return offset
}
