package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/redscript/pkg/domain"
)

// Reader implements ports.SourceReader over an in-memory map of locator to text.
// Safe for concurrent use.
type Reader struct {
	mu    sync.RWMutex
	files map[string]string
	reads map[string]int
}

// NewReader creates a reader pre-populated with files.
func NewReader(files map[string]string) *Reader {
	r := &Reader{
		files: make(map[string]string, len(files)),
		reads: make(map[string]int),
	}
	for k, v := range files {
		r.files[k] = v
	}
	return r
}

// Set adds or replaces a file.
func (r *Reader) Set(locator, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[locator] = content
}

// Remove deletes a file.
func (r *Reader) Remove(locator string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, locator)
}

// ReadText returns the content stored under locator.
func (r *Reader) ReadText(ctx context.Context, locator string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads[locator]++
	content, ok := r.files[locator]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSourceNotFound, locator)
	}
	return content, nil
}

// Reads returns how many times locator was read, found or not.
func (r *Reader) Reads(locator string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reads[locator]
}
