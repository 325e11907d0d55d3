package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"home", "~", home},
		{"home child", "~/Pictures/wp", filepath.Join(home, "Pictures", "wp")},
		{"absolute", "/usr/share/backgrounds", "/usr/share/backgrounds"},
		{"relative", "wallpapers", filepath.Join(cwd, "wallpapers")},
		{"tilde inside name", "/srv/a~b", "/srv/a~b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExistingPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.Mkdir(filepath.Join(home, "Pictures"), 0755))

	got, err := ExistingPath("  ~/Pictures ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures"), got)

	_, err = ExistingPath("~/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ExistingPath("   ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestDirs(t *testing.T) {
	root := t.TempDir()

	configDir, cacheDir, err := dirsIn(filepath.Join(root, "config"), filepath.Join(root, "cache"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "config", AppName), configDir)
	assert.Equal(t, filepath.Join(root, "cache", AppName), cacheDir)

	assert.DirExists(t, configDir)
	assert.DirExists(t, cacheDir)
}
