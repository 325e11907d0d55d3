package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6gh/regolith-wallpaper/internal/wallpapers"
)

func resetPickerState(t *testing.T, paths ...string) {
	t.Helper()

	Gallery.Clear()
	for i, path := range paths {
		Gallery.Add(wallpapers.Item{ID: i, Path: path})
	}
	CurrentWallpaper = ""
	t.Cleanup(func() {
		Gallery.Clear()
		CurrentWallpaper = ""
	})
}

func TestToggledOffStaysOffAfterOwnWrite(t *testing.T) {
	resetPickerState(t, "/w/a.png", "/w/b.png")

	// click twice: selected, then toggled off, both apply a.png
	Gallery.Select(0)
	Gallery.Select(0)
	CurrentWallpaper = "/w/a.png"

	// the watcher reads back what the click wrote
	followCurrentWallpaper("/w/a.png", highlightChanged)

	_, ok := Gallery.Selected()
	assert.False(t, ok)
	assert.Equal(t, "/w/a.png", CurrentWallpaper)
}

func TestExternalEditMovesSelection(t *testing.T) {
	resetPickerState(t, "/w/a.png", "/w/b.png")
	CurrentWallpaper = "/w/a.png"

	followCurrentWallpaper("/w/b.png", highlightChanged)

	selected, ok := Gallery.Selected()
	require.True(t, ok)
	assert.Equal(t, "/w/b.png", selected.Path)
}

func TestUnreadableConfigForgetsCurrentWallpaper(t *testing.T) {
	resetPickerState(t, "/w/a.png")
	CurrentWallpaper = "/w/a.png"

	followCurrentWallpaper("", highlightNever)
	assert.Empty(t, CurrentWallpaper)

	// what a finished reload does with it
	markSelected(CurrentWallpaper)
	_, ok := Gallery.Selected()
	assert.False(t, ok)
}

func TestStaleLoad(t *testing.T) {
	old := loadGeneration
	t.Cleanup(func() { loadGeneration = old })

	loadGeneration = 3
	assert.False(t, staleLoad(3))
	loadGeneration++
	assert.True(t, staleLoad(3))
	assert.False(t, staleLoad(4))
}
