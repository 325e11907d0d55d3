package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NewDefault(), cfg)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "refresh_command")
	assert.Contains(t, string(content), "regolith-look")
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := NewDefault()
	cfg.General.WallpapersPath = "~/Pictures/wallpapers"
	cfg.General.MaxImages = 12
	cfg.Regolith.PostCommand = "notify-send %wallpaper%"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadImportsLegacyYAML(t *testing.T) {
	dir := t.TempDir()
	legacy := "wallpapers_path: /srv/wallpapers\nmax_images: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte(legacy), 0644))

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "/srv/wallpapers", cfg.General.WallpapersPath)
	assert.Equal(t, 7, cfg.General.MaxImages)

	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
}

func TestLoadIgnoresBrokenLegacyYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte("max_images: [oops"), 0644))

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, NewDefault(), cfg)
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[General\nmax_images = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.General.MaxImages = -3

	cfg.Validate()

	defaults := NewDefault()
	assert.Equal(t, 0, cfg.General.MaxImages)
	assert.Equal(t, defaults.General.ThumbnailSize, cfg.General.ThumbnailSize)
	assert.Equal(t, defaults.General.Workers, cfg.General.Workers)
	assert.Equal(t, defaults.Regolith.XresourcesFile, cfg.Regolith.XresourcesFile)
	assert.Equal(t, defaults.Regolith.RefreshCommand, cfg.Regolith.RefreshCommand)
}

func TestWallpapersDirUnset(t *testing.T) {
	dir, err := NewDefault().WallpapersDir()
	require.NoError(t, err)
	assert.Empty(t, dir)
}
