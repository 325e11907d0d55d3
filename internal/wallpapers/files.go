// Package wallpapers finds image files, keeps track of the picker's selection
// and produces the cached thumbnails shown in the grid.
package wallpapers

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	// decoders for the formats accepted by IsImage
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNoImages = errors.New("no image files found")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".jfif": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// IsImage reports whether name has an image extension we can decode.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// List returns the image files directly inside dir, sorted by name.
// Subdirectories and entries that cannot be inspected are skipped.
func List(ctx context.Context, dir string) ([]string, error) {
	log.Info("Loading files...", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fullPath := filepath.Join(dir, entry.Name())

		// follow symlinks so linked folders are skipped and linked images kept
		info, err := os.Stat(fullPath)
		if err != nil {
			log.Debug("Skipping unreadable entry", "path", fullPath, "err", err)
			continue
		}
		if info.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		images = append(images, fullPath)
	}

	log.Info("Files loaded", "count", len(images))
	return images, nil
}

// Limit returns at most max paths; max <= 0 means no limit.
func Limit(paths []string, max int) []string {
	if max <= 0 || max >= len(paths) {
		return paths
	}
	return paths[:max]
}

// PickRandom chooses one path uniformly at random.
func PickRandom(paths []string, rng *rand.Rand) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoImages
	}
	if rng == nil {
		return paths[rand.IntN(len(paths))], nil
	}
	return paths[rng.IntN(len(paths))], nil
}
