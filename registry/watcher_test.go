package registry

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flags.json", `{"flags": {"a": {"value": true}}}`)

	cache := NewCache()
	formats := NewFormatRegistry()

	reg, err := formats.ParseFile(path)
	require.NoError(t, err)
	cache.Replace(reg, path)

	w, err := NewWatcher(path, cache, formats, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"flags": {"b": {"value": false}}}`), 0644))

	assert.Eventually(t, func() bool {
		_, ok := cache.Lookup("b")
		return ok
	}, 3*time.Second, 20*time.Millisecond, "cache should pick up the rewritten config")

	_, ok := cache.Lookup("a")
	assert.False(t, ok, "reload replaces the registry wholesale")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flags.json", `{"flags": {"a": {"value": true}}}`)

	cache := NewCache()
	formats := NewFormatRegistry()
	reg, err := formats.ParseFile(path)
	require.NoError(t, err)
	cache.Replace(reg, path)

	w, err := NewWatcher(path, cache, formats, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	writeFile(t, dir, "unrelated.json", `{"flags": {"z": {"value": true}}}`)

	time.Sleep(200 * time.Millisecond)
	_, ok := cache.Lookup("z")
	assert.False(t, ok, "changes to unrelated files must not reload the cache")
}
