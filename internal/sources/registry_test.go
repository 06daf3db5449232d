package sources

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadRegistryFromManifest(t *testing.T) {
	path := writeManifest(t, `
sources:
  - name: HackerNews
    type: hackernews
    config:
      api_base: http://hn.local/v0
      min_engagement: 20
  - name: IndieHackers
    type: rss
    url: https://www.indiehackers.com/feed.xml
    config:
      keywords: [struggle, "how to"]
  - name: ProductHunt
    type: producthunt
    active: false
  - name: HackerNews
    type: hackernews
`)

	registry, err := LoadRegistry(path, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, registry.Count())

	hn, ok := registry.Get("HackerNews")
	require.True(t, ok)
	assert.Equal(t, "http://hn.local/v0", hn.Config.APIBase)
	assert.Equal(t, 20, hn.Config.MinEngagement)

	active := registry.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "HackerNews", active[0].Name)
	assert.Equal(t, "IndieHackers", active[1].Name)
	assert.Equal(t, []string{"struggle", "how to"}, active[1].Config.Keywords)
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
sources:
  - name: Reddit
    type: reddit
    subreddit: SaaS
`)

	_, err := LoadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRequiresNameAndKnownType(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "sources:\n  - type: reddit\n"))
	assert.ErrorContains(t, err, "name")

	_, err = LoadManifest(writeManifest(t, "sources:\n  - name: Reddit\n"))
	assert.ErrorContains(t, err, "type")

	_, err = LoadManifest(writeManifest(t, "sources:\n  - name: Mastodon\n    type: mastodon\n"))
	assert.ErrorContains(t, err, "unknown type")
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := LoadRegistry("", discardLogger())
	require.NoError(t, err)

	names := make([]string, 0, registry.Count())
	for _, def := range registry.Active() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"Reddit", "HackerNews", "ProductHunt"}, names)
}

func TestRegisterDuplicate(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Definition{Name: "a", Type: TypeRSS}))
	assert.Error(t, registry.Register(Definition{Name: "a", Type: TypeRSS}))
}
