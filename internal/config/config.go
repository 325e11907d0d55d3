package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	FileName       = "config.toml"
	LegacyFileName = "config.yaml"

	DefaultThumbnailSize = 360
	DefaultWorkers       = 4
	DefaultXresources    = "~/.config/regolith3/Xresources"
)

type GeneralStruct struct {
	WallpapersPath string `toml:"wallpapers_path" comment:"The folder scanned for wallpaper images; ~ is expanded"`
	MaxImages      int    `toml:"max_images"      comment:"Max number of images to load in the picker; 0 = no limit"`
	ThumbnailSize  int    `toml:"thumbnail_size"  comment:"Width and height in pixels the thumbnails are fitted into"`
	Workers        int    `toml:"workers"         comment:"How many images are decoded at the same time"`
}

type RegolithStruct struct {
	XresourcesFile     string   `toml:"xresources_file"      comment:"The Regolith Xresources file holding regolith.wallpaper.file"`
	RefreshCommand     []string `toml:"refresh_command"      comment:"The command run after the Xresources file was updated"`
	PostCommand        string   `toml:"post_command"         comment:"Optional shell command run after a successful refresh; %wallpaper% is replaced by the image path"`
	DiscardProcessLogs bool     `toml:"discard_process_logs" comment:"Whether to pipe the post command's output to /dev/null"`
}

type UIStruct struct {
	WatchFiles  bool   `toml:"watch_files"  comment:"Reload the picker when the wallpapers folder or the Xresources file change"`
	LastApplied string `toml:"last_applied" comment:"The last wallpaper applied from this tool"`
}

type Config struct {
	General  GeneralStruct  `toml:"General"`
	Regolith RegolithStruct `toml:"Regolith"`
	UI       UIStruct       `toml:"UI"`
}

// legacyConfig is the YAML layout written by older releases.
type legacyConfig struct {
	WallpapersPath *string `yaml:"wallpapers_path"`
	MaxImages      *int    `yaml:"max_images"`
}

func NewDefault() *Config {
	return &Config{
		General: GeneralStruct{
			WallpapersPath: "",
			MaxImages:      0,
			ThumbnailSize:  DefaultThumbnailSize,
			Workers:        DefaultWorkers,
		},
		Regolith: RegolithStruct{
			XresourcesFile:     DefaultXresources,
			RefreshCommand:     []string{"/usr/bin/regolith-look", "refresh"},
			PostCommand:        "",
			DiscardProcessLogs: true,
		},
		UI: UIStruct{
			WatchFiles:  true,
			LastApplied: "",
		},
	}
}

// Load reads the config at path, creating it with defaults when it does not
// exist yet. A legacy config.yaml in the same folder is imported first.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("Config file does not exist, creating default", "path", path)

		legacyPath := filepath.Join(filepath.Dir(path), LegacyFileName)
		if err := importLegacy(legacyPath, cfg); err != nil {
			log.Warn("Failed to import legacy config", "path", legacyPath, "err", err)
		}

		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		log.Info("Default config file created", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	cfg.Validate()

	log.Info("Config file loaded", "path", path)
	return cfg, nil
}

func importLegacy(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var legacy legacyConfig
	if err := yaml.Unmarshal(content, &legacy); err != nil {
		return fmt.Errorf("failed to unmarshal legacy config: %w", err)
	}

	if legacy.WallpapersPath != nil {
		cfg.General.WallpapersPath = *legacy.WallpapersPath
	}
	if legacy.MaxImages != nil {
		cfg.General.MaxImages = *legacy.MaxImages
	}
	log.Info("Imported legacy config", "path", path)
	return nil
}

// Makes sure required fields are set
func (c *Config) Validate() {
	defaults := NewDefault()

	if c.General.MaxImages < 0 {
		c.General.MaxImages = 0
	}
	if c.General.ThumbnailSize <= 0 {
		c.General.ThumbnailSize = defaults.General.ThumbnailSize
	}
	if c.General.Workers <= 0 {
		c.General.Workers = defaults.General.Workers
	}
	if c.Regolith.XresourcesFile == "" {
		c.Regolith.XresourcesFile = defaults.Regolith.XresourcesFile
	}
	if len(c.Regolith.RefreshCommand) == 0 || c.Regolith.RefreshCommand[0] == "" {
		c.Regolith.RefreshCommand = defaults.Regolith.RefreshCommand
	}
}

func (c *Config) Save(path string) error {
	c.Validate()

	content, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug("Config saved", "path", path)
	return nil
}

// XresourcesPath returns the resolved location of the Regolith config file.
func (c *Config) XresourcesPath() (string, error) {
	return ResolvePath(c.Regolith.XresourcesFile)
}

// WallpapersDir returns the resolved wallpapers folder, or "" when unset.
func (c *Config) WallpapersDir() (string, error) {
	if c.General.WallpapersPath == "" {
		return "", nil
	}
	return ResolvePath(c.General.WallpapersPath)
}
