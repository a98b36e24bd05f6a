package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphics_feed/internal/config"
	"graphics_feed/internal/fetch"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestBuildSource(t *testing.T) {
	dir := t.TempDir()
	headers := filepath.Join(dir, "headers.json")
	authors := filepath.Join(dir, "authors.json")
	require.NoError(t, os.WriteFile(headers, []byte(`{"nyt-token":"abc"}`), 0o644))
	require.NoError(t, os.WriteFile(authors, []byte(`[{"slug":"naema-ahmed"}]`), 0o644))

	cfg := loadConfig(t, `
outlets:
  nyt:
    headers_file: `+headers+`
    image_strategy: transform_fetch
  wapo:
    authors_file: `+authors+`
`)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := fetch.New(fetch.Config{}, logger)
	browser := fetch.NewBrowser(fetch.BrowserConfig{}, logger)

	for _, id := range []string{
		config.OutletNYT, config.OutletReuters, config.OutletBloomberg,
		config.OutletWaPo, config.OutletSCMP, config.OutletPudding,
	} {
		src, err := buildSource(cfg, id, client, browser, logger)
		require.NoError(t, err, id)
		assert.Equal(t, id, src.ID())
	}

	_, err := buildSource(cfg, "ecb", client, browser, logger)
	assert.Error(t, err)
}

func TestBuildSource_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(t, `
outlets:
  nyt:
    headers_file: `+filepath.Join(dir, "missing.json")+`
  wapo:
    authors_file: `+filepath.Join(dir, "missing.json")+`
`)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := fetch.New(fetch.Config{}, logger)

	_, err := buildSource(cfg, config.OutletNYT, client, nil, logger)
	assert.Error(t, err)

	_, err = buildSource(cfg, config.OutletWaPo, client, nil, logger)
	assert.Error(t, err)
}
