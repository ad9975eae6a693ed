package composite

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/disintegration/gift"
)

// Rotate turns src clockwise by a multiple of 90 degrees and returns a new raster.
// Width and height swap for quarter turns; 0 returns a copy.
func Rotate(src *image.NRGBA, degrees int) (*image.NRGBA, error) {
	if err := checkRaster("source", src); err != nil {
		return nil, err
	}
	if degrees%90 != 0 {
		return nil, fmt.Errorf("%w: rotation must be a multiple of 90 degrees, got %d", ErrInvalidArgument, degrees)
	}

	// gift rotates counter-clockwise.
	var filter gift.Filter
	switch adjust.NormalizeRotation(degrees) {
	case 0:
		return Clone(src), nil
	case 90:
		filter = gift.Rotate270()
	case 180:
		filter = gift.Rotate180()
	case 270:
		filter = gift.Rotate90()
	}

	g := gift.New(filter)
	b := g.Bounds(src.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	g.Draw(dst, src)

	return dst, nil
}
