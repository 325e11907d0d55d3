package wallpapers

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Loader builds thumbnails for a list of images with a bounded number of workers.
type Loader struct {
	Thumbnailer Thumbnailer
	Workers     int
}

// Load thumbnails every path and reports each finished item through onLoaded.
// The item ID is the index of its path. Images that fail are reported through
// onError and do not stop the others. Callbacks run on the worker goroutines.
func (l Loader) Load(ctx context.Context, paths []string, onLoaded func(Item), onError func(path string, err error)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Workers, 1))

	for id, imagePath := range paths {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			thumbnail, err := l.Thumbnailer.Thumbnail(imagePath)
			if err != nil {
				log.Error("Failed to load image", "path", imagePath, "err", err)
				if onError != nil {
					onError(imagePath, err)
				}
				return nil
			}

			if onLoaded != nil {
				onLoaded(Item{ID: id, Path: imagePath, Thumbnail: thumbnail})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
