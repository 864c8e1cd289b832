package registry

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrConfigNotFound is returned when no flag config file exists at any
// probed location. The error is uniform regardless of which candidate
// directories were tried.
var ErrConfigNotFound = errors.New("flag config file not found")

// DefaultFilenames are the flag config filename patterns probed in
// order within each search directory.
var DefaultFilenames = []string{"flags.json", "flags.md"}

// Locator finds a flag config file by probing an explicit, ordered
// list of search directories for filename patterns.
type Locator struct {
	// SearchPaths are the directories probed in order.
	SearchPaths []string
	// Filenames are doublestar patterns matched against directory
	// entries, tried in order within each directory.
	Filenames []string
}

// NewLocator creates a locator over the given search directories with
// the default filename patterns. With no directories it probes the
// working directory and its parent.
func NewLocator(searchPaths ...string) *Locator {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths()
	}
	return &Locator{
		SearchPaths: searchPaths,
		Filenames:   append([]string(nil), DefaultFilenames...),
	}
}

// DefaultSearchPaths returns the working directory and its parent.
func DefaultSearchPaths() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return []string{cwd, filepath.Dir(cwd)}
}

// Locate returns the first flag config file found across the search
// paths, or ErrConfigNotFound.
func (l *Locator) Locate() (string, error) {
	for _, dir := range l.SearchPaths {
		if path, ok := l.probe(dir); ok {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// LocateIn probes a single directory, ignoring the configured search
// paths. Used when the caller names the directory explicitly.
func (l *Locator) LocateIn(dir string) (string, error) {
	if path, ok := l.probe(dir); ok {
		return path, nil
	}
	return "", ErrConfigNotFound
}

// probe scans one directory for the first entry matching a filename
// pattern. Directory entries are visited in lexical order, so the
// result is deterministic for a given pattern order.
func (l *Locator) probe(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, pattern := range l.Filenames {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if ok, err := doublestar.Match(pattern, entry.Name()); err == nil && ok {
				return filepath.Join(dir, entry.Name()), true
			}
		}
	}
	return "", false
}
