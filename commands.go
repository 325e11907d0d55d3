package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"
	"github.com/ncruces/zenity"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/6gh/regolith-wallpaper/internal/processes"
	"github.com/6gh/regolith-wallpaper/internal/regolith"
	"github.com/6gh/regolith-wallpaper/internal/wallpapers"
)

var imagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.jfif", "*.gif", "*.bmp", "*.webp", "*.tif", "*.tiff"}

// applyWallpaper writes wallpaper into the Regolith config, refreshes the look
// and runs the post command. It does not touch Config, so it is safe to call
// from a goroutine.
func applyWallpaper(ctx context.Context, xresources string, refreshCommand []string, postCommand string, discardLogs bool, wallpaper string) error {
	log.Info("Applying wallpaper", "wallpaper", wallpaper)

	refresher := regolith.CommandRefresher{Argv: refreshCommand}
	if err := regolith.SetWallpaper(ctx, xresources, wallpaper, refresher); err != nil {
		return err
	}

	pid, err := processes.RunPostCommand(postCommand, wallpaper, discardLogs)
	if err != nil {
		log.Warn("Error starting post command", "err", err)
	} else if pid > 0 {
		log.Info("Post command started", "pid", pid)
	}
	return nil
}

// applyFromCLI applies wallpaper with the loaded Config and remembers it.
func applyFromCLI(ctx context.Context, wallpaper string) error {
	xresources, err := Config.XresourcesPath()
	if err != nil {
		return err
	}

	if err := applyWallpaper(ctx, xresources, Config.Regolith.RefreshCommand, Config.Regolith.PostCommand, Config.Regolith.DiscardProcessLogs, wallpaper); err != nil {
		return err
	}

	Config.UI.LastApplied = wallpaper
	saveConfig()
	return nil
}

func notify(message string) {
	if err := beeep.Notify("Regolith wallpaper", message, ""); err != nil {
		log.Debug("Could not send notification", "err", err)
	}
}

func runRandomPick(ctx context.Context) error {
	dir, err := Config.WallpapersDir()
	if err != nil {
		return err
	}
	if dir == "" {
		return errors.New("no `wallpapers_path` on config")
	}

	paths, err := wallpapers.List(ctx, dir)
	if err != nil {
		return err
	}

	wallpaper, err := wallpapers.PickRandom(paths, nil)
	if err != nil {
		return fmt.Errorf("%w in %s", err, dir)
	}

	if err := applyFromCLI(ctx, wallpaper); err != nil {
		return err
	}

	log.Info("Random wallpaper applied", "wallpaper", wallpaper)
	notify("Wallpaper set to " + filepath.Base(wallpaper))
	return nil
}

func runSelect(ctx context.Context) error {
	options := []zenity.Option{
		zenity.Title("Select Wallpaper"),
		zenity.FileFilters{
			{Name: "Images", Patterns: imagePatterns},
		},
	}
	if dir, err := Config.WallpapersDir(); err == nil && dir != "" {
		options = append(options, zenity.Filename(dir+string(filepath.Separator)))
	}

	file, err := zenity.SelectFile(options...)
	if errors.Is(err, zenity.ErrCanceled) {
		log.Info("Selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	if !wallpapers.IsImage(file) {
		return fmt.Errorf("%s is not a supported image", file)
	}

	if err := applyFromCLI(ctx, file); err != nil {
		return err
	}
	notify("Wallpaper set to " + filepath.Base(file))
	return nil
}

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Generate the thumbnail cache for the wallpapers folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := Config.WallpapersDir()
		if err != nil {
			return err
		}
		if dir == "" {
			return errors.New("no `wallpapers_path` on config")
		}

		paths, err := wallpapers.List(cmd.Context(), dir)
		if err != nil {
			return err
		}
		paths = wallpapers.Limit(paths, Config.General.MaxImages)

		bar := progressbar.Default(int64(len(paths)), "Generating thumbnails")
		loader := wallpapers.Loader{
			Thumbnailer: wallpapers.Thumbnailer{CacheDir: CacheDir, Size: Config.General.ThumbnailSize},
			Workers:     Config.General.Workers,
		}

		var failed atomic.Int32
		err = loader.Load(cmd.Context(), paths, func(wallpapers.Item) {
			bar.Add(1)
		}, func(string, error) {
			bar.Add(1)
			failed.Add(1)
		})
		bar.Finish()
		if err != nil {
			return err
		}

		if n := failed.Load(); n > 0 {
			return fmt.Errorf("%d of %d images could not be decoded", n, len(paths))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d thumbnails ready in %s\n", len(paths), CacheDir)
		return nil
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the wallpaper currently set in the Regolith config",
	RunE: func(cmd *cobra.Command, args []string) error {
		xresources, err := Config.XresourcesPath()
		if err != nil {
			return err
		}

		wallpaper, err := regolith.ReadWallpaper(xresources)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), wallpaper)
		return nil
	},
}
