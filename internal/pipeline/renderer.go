// Package pipeline turns two photos and their sliders into one blended image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/MeKo-Tech/photoblend/internal/composite"
	"github.com/disintegration/gift"
	"golang.org/x/sync/errgroup"
)

// ErrMissingSource is returned when a layer has no decoded raster.
var ErrMissingSource = errors.New("missing source raster")

// Layer is one decoded photo plus its adjustment sliders.
type Layer struct {
	Source *image.NRGBA
	Params adjust.Params
}

// Request describes a full two-layer edit. Opacities come from each layer's Params.Alpha.
type Request struct {
	Bottom Layer
	Top    Layer
	Mode   composite.BlendMode
}

// Swap exchanges the two photos and their rotations.
// Tonal adjustments and opacities stay with their layer slot.
func (r *Request) Swap() {
	r.Bottom.Source, r.Top.Source = r.Top.Source, r.Bottom.Source
	r.Bottom.Params.Rotation, r.Top.Params.Rotation = r.Top.Params.Rotation, r.Bottom.Params.Rotation
}

// Result carries the composite and the processed layers it was built from.
type Result struct {
	Image   *image.NRGBA
	Bottom  *image.NRGBA // bottom after adjustment and rotation
	Top     *image.NRGBA // top after adjustment, rotation and fitting to the bottom's canvas
	Elapsed time.Duration
}

// Options tunes a Renderer.
type Options struct {
	// MaxEdge downscales sources so their longest edge is at most this many pixels.
	// Zero renders at full resolution.
	MaxEdge int
}

// Renderer runs the adjust/rotate/composite pipeline for a Request.
type Renderer struct {
	logger *slog.Logger
	opts   Options
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default().
func NewRenderer(logger *slog.Logger, opts Options) *Renderer {
	return &Renderer{logger: logger, opts: opts}
}

// Render processes both layers in parallel, fits the top layer to the bottom's canvas and composites them.
// Every call starts again from the original sources.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Bottom.Source == nil {
		return nil, fmt.Errorf("bottom layer: %w", ErrMissingSource)
	}
	if req.Top.Source == nil {
		return nil, fmt.Errorf("top layer: %w", ErrMissingSource)
	}
	if err := req.Bottom.Params.Validate(); err != nil {
		return nil, fmt.Errorf("bottom layer: %w", err)
	}
	if err := req.Top.Params.Validate(); err != nil {
		return nil, fmt.Errorf("top layer: %w", err)
	}

	bottomLayer := r.prepare(req.Bottom)
	topLayer := r.prepare(req.Top)

	var bottom, top *image.NRGBA
	var g errgroup.Group
	g.Go(func() error {
		var err error
		bottom, err = ProcessLayer(bottomLayer)
		if err != nil {
			return fmt.Errorf("bottom layer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = ProcessLayer(topLayer)
		if err != nil {
			return fmt.Errorf("top layer: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.log().Debug("Layers processed",
		"bottom", bottom.Bounds().Size(),
		"top", top.Bounds().Size(),
		"elapsed", time.Since(start),
	)

	canvas := bottom.Bounds()
	top = FitToCanvas(top, canvas.Dx(), canvas.Dy())

	out, err := composite.Composite(bottom, top, req.Mode, req.Bottom.Params.Alpha, req.Top.Params.Alpha)
	if err != nil {
		return nil, fmt.Errorf("failed to composite layers: %w", err)
	}

	elapsed := time.Since(start)
	r.log().Debug("Composite rendered", "mode", req.Mode, "size", canvas.Size(), "elapsed", elapsed)

	return &Result{
		Image:   out,
		Bottom:  bottom,
		Top:     top,
		Elapsed: elapsed,
	}, nil
}

func (r *Renderer) prepare(l Layer) Layer {
	if r.opts.MaxEdge > 0 {
		l.Source = Downscale(l.Source, r.opts.MaxEdge)
	}
	return l
}

// ProcessLayer applies the layer's colour transform and then its rotation.
func ProcessLayer(l Layer) (*image.NRGBA, error) {
	if l.Source == nil {
		return nil, ErrMissingSource
	}

	adjusted, err := composite.ApplyTransform(l.Source, l.Params.Transform())
	if err != nil {
		return nil, fmt.Errorf("failed to apply adjustments: %w", err)
	}

	if adjust.NormalizeRotation(l.Params.Rotation) == 0 {
		return adjusted, nil
	}

	rotated, err := composite.Rotate(adjusted, l.Params.Rotation)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate layer: %w", err)
	}
	return rotated, nil
}

// FitToCanvas scales img to cover a w x h canvas and crops the overflow around the centre.
// An image that already matches is returned unchanged.
func FitToCanvas(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	g := gift.New(gift.ResizeToFill(w, h, gift.LanczosResampling, gift.CenterAnchor))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}

// Downscale shrinks img so its longest edge is at most maxEdge, keeping the aspect ratio.
// Smaller images are returned unchanged.
func Downscale(img *image.NRGBA, maxEdge int) *image.NRGBA {
	b := img.Bounds()
	if maxEdge <= 0 || (b.Dx() <= maxEdge && b.Dy() <= maxEdge) {
		return img
	}

	g := gift.New(gift.ResizeToFit(maxEdge, maxEdge, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
