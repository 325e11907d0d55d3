package regolith

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `! regolith overrides
regolith.look: ayu
regolith.wallpaper.file: /home/me/old.png
regolith.wallpaper.options: zoom
`

func TestParseWallpaper(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"plain", sample, "/home/me/old.png", true},
		{"colon in path", "regolith.wallpaper.file: /mnt/c:/bg.jpg\n", "/mnt/c:/bg.jpg", true},
		{"crlf", "a: b\r\nregolith.wallpaper.file: /bg.jpg\r\n", "/bg.jpg", true},
		{"first wins", "regolith.wallpaper.file: /a.png\nregolith.wallpaper.file: /b.png\n", "/a.png", true},
		{"missing", "regolith.look: ayu\n", "", false},
		{"empty value", "regolith.wallpaper.file:   \n", "", false},
		{"commented", "! regolith.wallpaper.file: /a.png\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWallpaper(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatchWallpaper(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "replaces only the wallpaper line",
			content: sample,
			want: `! regolith overrides
regolith.look: ayu
regolith.wallpaper.file: /new.jpg
regolith.wallpaper.options: zoom
`,
		},
		{
			name:    "keeps missing trailing newline",
			content: "a: 1\nregolith.wallpaper.file: /old.png\nb: 2",
			want:    "a: 1\nregolith.wallpaper.file: /new.jpg\nb: 2",
		},
		{
			name:    "keeps crlf endings",
			content: "a: 1\r\nregolith.wallpaper.file: /old.png\r\nb: 2\r\n",
			want:    "a: 1\r\nregolith.wallpaper.file: /new.jpg\r\nb: 2\r\n",
		},
		{
			name:    "last line without newline",
			content: "a: 1\nregolith.wallpaper.file: /old.png",
			want:    "a: 1\nregolith.wallpaper.file: /new.jpg",
		},
		{
			name:    "only first occurrence",
			content: "regolith.wallpaper.file: /a\nregolith.wallpaper.file: /b\n",
			want:    "regolith.wallpaper.file: /new.jpg\nregolith.wallpaper.file: /b\n",
		},
		{
			name:    "appends when missing",
			content: "a: 1",
			want:    "a: 1\nregolith.wallpaper.file: /new.jpg\n",
		},
		{
			name:    "empty file",
			content: "",
			want:    "regolith.wallpaper.file: /new.jpg\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PatchWallpaper(tt.content, "/new.jpg"))
		})
	}
}

func TestReadWallpaper(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	file := filepath.Join(t.TempDir(), "Xresources")
	require.NoError(t, os.WriteFile(file, []byte("regolith.wallpaper.file: ~/bg/one.png\n"), 0600))

	got, err := ReadWallpaper(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bg", "one.png"), got)
}

func TestReadWallpaperErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadWallpaper(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNoConfigFile)

	file := filepath.Join(dir, "Xresources")
	require.NoError(t, os.WriteFile(file, []byte("regolith.look: ayu\n"), 0600))
	_, err = ReadWallpaper(file)
	assert.ErrorIs(t, err, ErrNoWallpaper)
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return f.err
}

func TestSetWallpaper(t *testing.T) {
	file := filepath.Join(t.TempDir(), "Xresources")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0600))

	refresher := &fakeRefresher{}
	require.NoError(t, SetWallpaper(context.Background(), file, "/new.jpg", refresher))
	assert.Equal(t, 1, refresher.calls)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, PatchWallpaper(sample, "/new.jpg"), string(content))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSetWallpaperRefreshFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "Xresources")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0644))

	refresher := &fakeRefresher{err: errors.New("boom")}
	err := SetWallpaper(context.Background(), file, "/new.jpg", refresher)
	assert.EqualError(t, err, "boom")

	// the file is still updated
	got, err := ReadWallpaper(file)
	require.NoError(t, err)
	assert.Equal(t, "/new.jpg", got)
}

func TestSetWallpaperMissingFile(t *testing.T) {
	refresher := &fakeRefresher{}
	err := SetWallpaper(context.Background(), filepath.Join(t.TempDir(), "nope"), "/new.jpg", refresher)
	assert.ErrorIs(t, err, ErrNoConfigFile)
	assert.Zero(t, refresher.calls)
}
