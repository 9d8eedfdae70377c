package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aretw0/redscript/pkg/domain"
)

// Reader implements ports.SourceReader using the local filesystem.
// Locators are file paths; relative paths resolve against the process
// working directory.
type Reader struct{}

// NewReader creates a filesystem reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadText reads the whole file at path as UTF-8 text.
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", domain.ErrSourceNotFound, err)
		}
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}
