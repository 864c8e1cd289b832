package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		ok       bool
	}{
		{"flags.json", FormatStructured, true},
		{"/some/dir/flags.JSON", FormatStructured, true},
		{"flags.md", FormatDocument, true},
		{"flags.markdown", FormatDocument, true},
		{"flags.yaml", "", false},
		{"flags", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := FormatForFile(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRegistryParseFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "flags.json", `{"functions": ["getFlag"], "flags": {"a": {"value": true}}}`)
	mdPath := writeFile(t, dir, "flags.md", "## Functions\ngetFlag\n\n## Flags\na:true\n")

	formats := NewFormatRegistry()

	fromJSON, err := formats.ParseFile(jsonPath)
	require.NoError(t, err)
	fromMD, err := formats.ParseFile(mdPath)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Patterns, fromMD.Patterns)
	assert.Equal(t, fromJSON.Flags["a"].Enabled, fromMD.Flags["a"].Enabled)
	assert.Equal(t, fromJSON.Flags["a"].Value, fromMD.Flags["a"].Value)
}

func TestFormatRegistryUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flags.toml", "")

	formats := NewFormatRegistry()
	_, err := formats.ParseFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser")
}

func TestFormatRegistryUnregisteredFormat(t *testing.T) {
	r := &FormatRegistry{parsers: map[Format]ParseFunc{}}
	_, err := r.Parse(FormatStructured, []byte("{}"))
	require.Error(t, err)
}
