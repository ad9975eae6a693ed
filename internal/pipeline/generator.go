package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/MeKo-Tech/photoblend/internal/composite"
	"github.com/MeKo-Tech/photoblend/internal/export"
	"github.com/MeKo-Tech/photoblend/internal/imageio"
)

// Exporter stores a finished image. export.FolderStore and export.Archive implement it.
type Exporter interface {
	Store(ctx context.Context, img *image.NRGBA, meta export.Meta) (string, error)
}

// LayerSpec points at a photo on disk and the sliders to apply to it.
type LayerSpec struct {
	Path   string
	Params adjust.Params
}

// Job is one edit: two photos, their sliders and a blend mode.
type Job struct {
	Name   string // optional export name
	Bottom LayerSpec
	Top    LayerSpec
	Mode   composite.BlendMode
	Swap   bool // swap the photos (and rotations) before rendering
}

func (j Job) String() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Bottom.Path + "+" + j.Top.Path
}

// Generator loads, renders and exports jobs.
type Generator struct {
	renderer   *Renderer
	store      Exporter
	logger     *slog.Logger
	keepLayers bool
}

// NewGenerator prepares a generator. With keepLayers the processed bottom and top layers
// are exported next to the composite.
func NewGenerator(renderer *Renderer, store Exporter, keepLayers bool, logger *slog.Logger) (*Generator, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}

	return &Generator{
		renderer:   renderer,
		store:      store,
		keepLayers: keepLayers,
		logger:     logger,
	}, nil
}

// Generate runs a job and returns the location of the stored composite.
func (g *Generator) Generate(ctx context.Context, job Job) (string, error) {
	g.log().Info("Loading sources", "job", job.String())

	bottom, err := g.load(job.Bottom.Path)
	if err != nil {
		return "", fmt.Errorf("bottom layer: %w", err)
	}
	top, err := g.load(job.Top.Path)
	if err != nil {
		return "", fmt.Errorf("top layer: %w", err)
	}

	req := Request{
		Bottom: Layer{Source: bottom, Params: job.Bottom.Params},
		Top:    Layer{Source: top, Params: job.Top.Params},
		Mode:   job.Mode,
	}
	if job.Swap {
		req.Swap()
	}

	res, err := g.renderer.Render(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", job.String(), err)
	}

	meta := export.Meta{
		Name:   job.Name,
		Mode:   job.Mode.String(),
		Bottom: req.Bottom.Params,
		Top:    req.Top.Params,
	}

	loc, err := g.store.Store(ctx, res.Image, meta)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", job.String(), err)
	}

	if g.keepLayers {
		if err := g.storeLayers(ctx, res, meta); err != nil {
			return loc, err
		}
	}

	g.log().Info("Composite exported",
		"job", job.String(),
		"mode", job.Mode,
		"location", loc,
		"elapsed", res.Elapsed,
	)
	return loc, nil
}

func (g *Generator) storeLayers(ctx context.Context, res *Result, meta export.Meta) error {
	layers := []struct {
		suffix string
		img    *image.NRGBA
	}{
		{"bottom", res.Bottom},
		{"top", res.Top},
	}

	for _, l := range layers {
		m := meta
		if m.Name != "" {
			m.Name += "_" + l.suffix
		}
		loc, err := g.store.Store(ctx, l.img, m)
		if err != nil {
			return fmt.Errorf("failed to export %s layer: %w", l.suffix, err)
		}
		g.log().Debug("Layer exported", "layer", l.suffix, "location", loc)
	}
	return nil
}

func (g *Generator) load(path string) (*image.NRGBA, error) {
	if path == "" {
		return nil, ErrMissingSource
	}
	img, format, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	g.log().Debug("Decoded source", "path", path, "format", format, "size", img.Bounds().Size())
	return img, nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
