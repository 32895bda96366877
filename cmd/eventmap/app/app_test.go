package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventmap/internal/fetch"
	"github.com/agentstation/eventmap/pkg/catalog"
)

func testApp(t *testing.T, cfg *Config, opts ...Option) *App {
	t.Helper()
	logger := zerolog.Nop()
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = catalog.LatestIssued.String()
	}
	a, err := New("1.2.3", "abc123", "2026-01-01", append([]Option{WithConfig(cfg), WithLogger(&logger)}, opts...)...)
	require.NoError(t, err)
	return a
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: 1
  title: Jazz Concert
  description: Live jazz in the park
  category: music
- id: 2
  title: Art Expo
  description: Modern art
  category: culture
`), 0o644))
	return path
}

func TestAppNew(t *testing.T) {
	a := testApp(t, &Config{})
	assert.Equal(t, "1.2.3", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2026-01-01", a.Date())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Config())
}

func TestAppFetcherFromConfig(t *testing.T) {
	path := writeCatalog(t)
	a := testApp(t, &Config{CatalogFile: path})

	f, err := a.Fetcher()
	require.NoError(t, err)
	file, ok := f.(*fetch.FileFetcher)
	require.True(t, ok)
	assert.Equal(t, path, file.Path())

	again, err := a.Fetcher()
	require.NoError(t, err)
	assert.Same(t, f, again)
}

func TestAppFetcherWithToken(t *testing.T) {
	a := testApp(t, &Config{SourceURL: "https://events.example.com", SourceToken: "t0k"})

	f, err := a.Fetcher()
	require.NoError(t, err)
	h, ok := f.(*fetch.HTTPFetcher)
	require.True(t, ok)
	assert.Equal(t, "https://events.example.com/api/events", h.Endpoint())
}

func TestAppFetcherNoSource(t *testing.T) {
	a := testApp(t, &Config{})
	_, err := a.Fetcher()
	assert.Error(t, err)
}

func TestAppNewStoreAndShutdown(t *testing.T) {
	a := testApp(t, &Config{CatalogFile: writeCatalog(t)})

	store, err := a.NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, []string{"music", "culture"}, store.Categories())

	require.NoError(t, a.Shutdown(context.Background()))
	assert.Error(t, store.Refresh(context.Background()), "shutdown closes stores")
}

func TestAppSettings(t *testing.T) {
	a := testApp(t, &Config{SourceURL: "https://x.example.com", CatalogFile: "f.yaml", Listen: ":1", Watch: true})
	s := a.Settings()
	assert.Equal(t, "https://x.example.com", s.Source)
	assert.Equal(t, "f.yaml", s.CatalogFile)
	assert.Equal(t, ":1", s.Listen)
	assert.True(t, s.Watch)
}

func execute(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecuteVersion(t *testing.T) {
	a := testApp(t, &Config{})
	out, err := execute(t, a, "version")
	require.NoError(t, err)
	assert.Equal(t, "eventmap 1.2.3\n", out)
}

func TestExecuteListFromFile(t *testing.T) {
	a := testApp(t, &Config{})
	out, err := execute(t, a, "list", "--file", writeCatalog(t), "--category", "culture", "-o", "json", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Art Expo"`)
	assert.NotContains(t, out, "Jazz Concert")
}

func TestExecuteURLFromFile(t *testing.T) {
	a := testApp(t, &Config{})
	out, err := execute(t, a, "url", "/?search=JAZZ&eventId=1", "--file", writeCatalog(t), "-o", "yaml", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "/?eventId=1&search=JAZZ")
	assert.True(t, strings.Contains(out, "matches: 1"), out)
}

func TestExecuteSourceAndFileExclusive(t *testing.T) {
	a := testApp(t, &Config{})
	_, err := execute(t, a, "list", "--file", "a.yaml", "--source", "https://x.example.com")
	assert.Error(t, err)
}
