package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirsle/configdir"
)

const AppName = "regolith-wallpaper"

var ErrEmptyPath = errors.New("empty path")

// ResolvePath expands a leading ~ to the home directory and makes the path absolute.
func ResolvePath(pathString string) (string, error) {
	// users can write ~ in the config file and the path editor
	if pathString == "~" || strings.HasPrefix(pathString, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		pathString = filepath.Join(home, strings.TrimPrefix(pathString, "~"))
	}

	if !filepath.IsAbs(pathString) {
		absPath, err := filepath.Abs(pathString)
		if err != nil {
			return "", err
		}
		pathString = absPath
	}

	return pathString, nil
}

// ExistingPath resolves pathString like ResolvePath and fails when nothing exists there.
func ExistingPath(pathString string) (string, error) {
	pathString = strings.TrimSpace(pathString)
	if pathString == "" {
		return "", ErrEmptyPath
	}

	resolved, err := ResolvePath(pathString)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(resolved); err != nil {
		return "", fmt.Errorf("invalid path %s: %w", pathString, err)
	}
	return resolved, nil
}

func ensureDir(pathString string) (string, error) {
	pathString, err := ResolvePath(pathString)
	if err != nil {
		return "", err
	}

	if err := configdir.MakePath(pathString); err != nil {
		return "", err
	}
	return pathString, nil
}

// Dirs ensures ~/.config/regolith-wallpaper and ~/.cache/regolith-wallpaper exist.
func Dirs() (configDir string, cacheDir string, err error) {
	return dirsIn(configdir.LocalConfig(), configdir.LocalCache())
}

func dirsIn(configBase, cacheBase string) (configDir string, cacheDir string, err error) {
	configDir, err = ensureDir(filepath.Join(configBase, AppName))
	if err != nil {
		return "", "", err
	}

	cacheDir, err = ensureDir(filepath.Join(cacheBase, AppName))
	if err != nil {
		return "", "", err
	}

	return configDir, cacheDir, nil
}
