package wallpapers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

// Thumbnailer saves a scaled down PNG of every image into CacheDir,
// so the picker does not have to decode full size wallpapers on every start.
type Thumbnailer struct {
	CacheDir string
	Size     int
}

// CachePath returns where the thumbnail for imagePath is stored.
// The key changes whenever the image is modified or the size changes.
func (t Thumbnailer) CachePath(imagePath string) (string, error) {
	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(t.Size)))

	return filepath.Join(t.dir(), hex.EncodeToString(h.Sum(nil))+".png"), nil
}

func (t Thumbnailer) dir() string {
	return filepath.Join(t.CacheDir, "thumbnails")
}

// ClearCache removes every cached thumbnail, whatever size it was made for.
func (t Thumbnailer) ClearCache() error {
	if t.CacheDir == "" {
		return errors.New("no cache directory")
	}
	if err := os.RemoveAll(t.dir()); err != nil {
		return fmt.Errorf("failed to clear thumbnail cache: %w", err)
	}
	log.Info("Thumbnail cache cleared", "path", t.dir())
	return nil
}

// Thumbnail returns the cached thumbnail of imagePath, creating it if needed.
func (t Thumbnailer) Thumbnail(imagePath string) (string, error) {
	if t.Size <= 0 {
		return "", errors.New("thumbnail size must be positive")
	}

	cachedPath, err := t.CachePath(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", imagePath, err)
	}

	if _, err := os.Stat(cachedPath); err == nil {
		log.Debug("Using cached thumbnail", "image", imagePath)
		return cachedPath, nil
	}

	// the preview and the grid can ask for the same image at once
	_, err, _ = inflight.Do(cachedPath, func() (any, error) {
		return nil, t.create(imagePath, cachedPath)
	})
	if err != nil {
		return "", err
	}
	return cachedPath, nil
}

var inflight singleflight.Group

func (t Thumbnailer) create(imagePath string, cachedPath string) error {
	if _, err := os.Stat(cachedPath); err == nil {
		return nil
	}

	log.Debug("Cached thumbnail not found, creating it", "image", imagePath)

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", imagePath, err)
	}

	// Fit keeps the aspect ratio so every thumbnail fits the same square cell
	thumbnail := imaging.Fit(img, t.Size, t.Size, imaging.Lanczos)

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	// a half written file must never show up under the final name
	tmp, err := os.CreateTemp(filepath.Dir(cachedPath), "*.tmp.png")
	if err != nil {
		return fmt.Errorf("failed to save thumbnail for %s: %w", imagePath, err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, thumbnail, imaging.PNG); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save thumbnail for %s: %w", imagePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save thumbnail for %s: %w", imagePath, err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		return fmt.Errorf("failed to save thumbnail for %s: %w", imagePath, err)
	}

	log.Debug("Thumbnail saved", "image", imagePath, "thumbnail", cachedPath)
	return nil
}
