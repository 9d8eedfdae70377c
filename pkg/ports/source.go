package ports

import "context"

// SourceReader reads script text.
type SourceReader interface {
	// ReadText returns the content at locator.
	// Returns an error wrapping domain.ErrSourceNotFound if nothing is there.
	ReadText(ctx context.Context, locator string) (string, error)
}
