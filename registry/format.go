package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Format identifies a flag config encoding.
type Format string

const (
	// FormatStructured is the JSON flag config (flags.json).
	FormatStructured Format = "structured"
	// FormatDocument is the markdown flag config (flags.md).
	FormatDocument Format = "document"
)

// ParseFunc turns raw config text into a registry.
type ParseFunc func(content []byte) (*Registry, error)

// FormatRegistry manages flag config parsers keyed by format.
type FormatRegistry struct {
	mu      sync.RWMutex
	parsers map[Format]ParseFunc
}

// NewFormatRegistry creates a format registry with both default
// parsers registered.
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{parsers: make(map[Format]ParseFunc)}
	r.Register(FormatStructured, ParseStructured)
	r.Register(FormatDocument, ParseDocument)
	return r
}

// Register adds a parser for a format, replacing any existing one.
func (r *FormatRegistry) Register(f Format, fn ParseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[f] = fn
}

// Get returns the parser for a format, or nil if none is registered.
func (r *FormatRegistry) Get(f Format) ParseFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[f]
}

// Parse parses content in the given format.
func (r *FormatRegistry) Parse(f Format, content []byte) (*Registry, error) {
	fn := r.Get(f)
	if fn == nil {
		return nil, fmt.Errorf("no parser for flag config format: %s", f)
	}
	return fn(content)
}

// ParseFile reads a flag config file and parses it with the format
// sniffed from the filename.
func (r *FormatRegistry) ParseFile(path string) (*Registry, error) {
	format, ok := FormatForFile(path)
	if !ok {
		return nil, fmt.Errorf("no parser for flag config file type: %s", filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flag config: %w", err)
	}

	return r.Parse(format, content)
}

// FormatForFile sniffs the config format from a filename extension.
func FormatForFile(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatStructured, true
	case ".md", ".markdown":
		return FormatDocument, true
	default:
		return "", false
	}
}
