package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/spf13/cobra"

	"github.com/6gh/regolith-wallpaper/internal/config"
)

const AppID = "dev._6gh.regolith-wallpaper"

var Version = "0.2.0"

var Config *config.Config
var ConfigFile string
var CacheDir string

var (
	maxImagesFlag  int
	randomPickFlag bool
	selectFlag     bool
)

var rootCmd = &cobra.Command{
	Use:          "regolith-wallpaper",
	Version:      Version,
	Short:        "Pick the Regolith wallpaper from a folder of images",
	Long:         "Browse a folder of images, pick one and write it to regolith.wallpaper.file in the Regolith Xresources, then refresh the look.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case randomPickFlag:
			return runRandomPick(cmd.Context())
		case selectFlag:
			return runSelect(cmd.Context())
		}
		return runGUI()
	},
}

func init() {
	rootCmd.Flags().IntVarP(&maxImagesFlag, "max-images", "m", 0, "Max number of images to load")
	rootCmd.Flags().BoolVarP(&randomPickFlag, "random-pick", "r", false, "Pick a random wallpaper without opening the picker")
	rootCmd.Flags().BoolVarP(&selectFlag, "select", "s", false, "Choose a wallpaper with a file dialog without opening the picker")
	rootCmd.MarkFlagsMutuallyExclusive("random-pick", "select")

	rootCmd.AddCommand(thumbnailsCmd)
	rootCmd.AddCommand(currentCmd)
}

func setupLogger() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "regolith-wallpaper",
	})

	if level := os.Getenv("REGOLITH_WALLPAPER_LOG"); level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			logger.Warn("Unknown log level, using info", "level", level)
		} else {
			logger.SetLevel(parsed)
		}
	}

	log.SetDefault(logger)
}

func loadConfig(cmd *cobra.Command) error {
	// ensure ~/.config/regolith-wallpaper and ~/.cache/regolith-wallpaper
	configDir, cacheDir, err := config.Dirs()
	if err != nil {
		return err
	}
	CacheDir = cacheDir
	log.Debug("Directories ensured", "config", configDir, "cache", cacheDir)

	ConfigFile = filepath.Join(configDir, config.FileName)
	Config, err = config.Load(ConfigFile)
	if err != nil {
		return err
	}

	if f := cmd.Flags().Lookup("max-images"); f != nil && f.Changed {
		Config.General.MaxImages = maxImagesFlag
		Config.Validate()
	}

	log.Info("Loaded configuration",
		"wallpapers_path", Config.General.WallpapersPath,
		"max_images", Config.General.MaxImages,
		"xresources", Config.Regolith.XresourcesFile,
	)
	return nil
}

func saveConfig() {
	if Config == nil || ConfigFile == "" {
		return
	}
	if err := Config.Save(ConfigFile); err != nil {
		log.Error("Failed to save config", "err", err)
		return
	}
	log.Info("Config saved", "path", ConfigFile)
}

func runGUI() error {
	app := gtk.NewApplication(AppID, gio.ApplicationFlagsNone)
	app.ConnectActivate(func() { activate(app) })
	app.ConnectShutdown(func() { shutdown() })

	// cobra already consumed our flags, GApplication must not see them
	code := app.Run([]string{os.Args[0]})
	saveConfig()
	if code != 0 {
		return errors.New("picker exited with an error")
	}
	return nil
}

func main() {
	setupLogger()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error("Failed", "err", err)
		os.Exit(1)
	}
}
