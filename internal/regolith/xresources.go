// Package regolith reads and updates the wallpaper entry of the Regolith
// Xresources file and applies it with the refresh command.
package regolith

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/6gh/regolith-wallpaper/internal/config"
)

const WallpaperKey = "regolith.wallpaper.file:"

var (
	ErrNoConfigFile = errors.New("regolith config file not found")
	ErrNoWallpaper  = errors.New("no wallpaper set in the regolith config file")
)

func readConfig(file string) (string, error) {
	content, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoConfigFile, file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read regolith config file: %w", err)
	}
	return string(content), nil
}

// ParseWallpaper returns the raw value of the first wallpaper line in content.
func ParseWallpaper(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, WallpaperKey) {
			continue
		}

		// everything after the key's colon; paths may contain more colons
		value := strings.TrimSpace(strings.TrimPrefix(line, WallpaperKey))
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}

// ReadWallpaper returns the wallpaper path currently set in the Xresources file.
func ReadWallpaper(file string) (string, error) {
	content, err := readConfig(file)
	if err != nil {
		return "", err
	}

	value, ok := ParseWallpaper(content)
	if !ok {
		return "", ErrNoWallpaper
	}

	return config.ResolvePath(value)
}

// PatchWallpaper replaces the first wallpaper line of content with path.
// All other lines, their line endings and the trailing newline are kept as is.
// If there is no wallpaper line, one is appended.
func PatchWallpaper(content string, wallpaper string) string {
	newLine := WallpaperKey + " " + wallpaper

	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, WallpaperKey) {
			continue
		}

		ending := ""
		switch {
		case strings.HasSuffix(line, "\r\n"):
			ending = "\r\n"
		case strings.HasSuffix(line, "\n"):
			ending = "\n"
		}
		lines[i] = newLine + ending
		return strings.Join(lines, "")
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + newLine + "\n"
}

// SetWallpaper writes wallpaper into the Xresources file and runs the refresher.
func SetWallpaper(ctx context.Context, file string, wallpaper string, refresher Refresher) error {
	content, err := readConfig(file)
	if err != nil {
		return err
	}

	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("failed to stat regolith config file: %w", err)
	}

	patched := PatchWallpaper(content, wallpaper)
	if err := os.WriteFile(file, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write regolith config file: %w", err)
	}
	log.Info("Wallpaper written to regolith config", "file", file, "wallpaper", wallpaper)

	if refresher == nil {
		return nil
	}
	return refresher.Refresh(ctx)
}
