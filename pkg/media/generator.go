package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rescp17/previewsender/pkg/selection"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultThumbnailSize = 320
	DefaultWorkers       = 4
)

// Generator derives media from selected files.
type Generator struct {
	ThumbnailSize int
	Workers       int
}

// NewGenerator creates a Generator with default settings.
func NewGenerator() *Generator {
	return &Generator{
		ThumbnailSize: DefaultThumbnailSize,
		Workers:       DefaultWorkers,
	}
}

// Derive converts items into media, preserving their order. As files, no
// thumbnails are produced.
func (g *Generator) Derive(ctx context.Context, items []selection.Item, asFile bool) ([]Media, error) {
	out := make([]Media, len(items))

	eg, ctx := errgroup.WithContext(ctx)
	workers := g.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	eg.SetLimit(workers)

	for i, it := range items {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := g.derive(it, asFile)
			if err != nil {
				return fmt.Errorf("derive %s: %w", it.Name, err)
			}
			out[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	slog.Debug("Derived media", "count", len(out), "as_file", asFile)
	return out, nil
}

func (g *Generator) derive(it selection.Item, asFile bool) (Media, error) {
	m := fromItem(it, asFile)
	if asFile || !m.Photo {
		return m, nil
	}

	src, err := decodeImage(it.Path)
	if err != nil {
		// Still sent as a photo; the peer re-encodes it.
		slog.Debug("No thumbnail for photo", "path", it.Path, "error", err)
		return m, nil
	}
	b := src.Bounds()
	m.Width, m.Height = b.Dx(), b.Dy()
	size := g.ThumbnailSize
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	m.Thumbnail = scaleToFit(src, size)
	return m, nil
}
