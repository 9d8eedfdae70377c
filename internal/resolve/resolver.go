// Package resolve turns user-supplied script locators into canonical paths.
package resolve

import (
	"path/filepath"
	"strings"
)

// DefaultExtension is appended to locators that carry no script extension.
const DefaultExtension = ".lua"

// Resolver normalizes script locators. It performs no I/O.
type Resolver struct {
	base      string
	extension string
}

// New creates a Resolver. An empty base leaves relative locators untouched;
// an empty extension selects DefaultExtension.
func New(base, extension string) *Resolver {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Resolver{base: base, extension: extension}
}

// Resolve completes the extension and joins relative locators to the base.
// Absolute locators are returned unchanged apart from the extension.
func (r *Resolver) Resolve(locator string) string {
	if !strings.EqualFold(filepath.Ext(locator), r.extension) {
		locator += r.extension
	}
	if r.base == "" || filepath.IsAbs(locator) {
		return locator
	}
	return filepath.Join(r.base, locator)
}
