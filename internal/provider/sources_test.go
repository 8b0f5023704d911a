package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := `sources:
  - name: example-tech
    url: https://example.com/tech/rss
    category: technology
  - name: example-world
    url: https://example.com/world/rss
    category: world
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	sources, err := LoadSources(path)

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "example-tech", sources[0].Name)
	assert.Equal(t, "https://example.com/tech/rss", sources[0].URL)
	assert.Equal(t, "world", sources[1].Category)
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadSources_EmptyList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: []\n"), 0o600))

	_, err := LoadSources(path)

	assert.Error(t, err)
}
