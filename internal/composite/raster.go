// Package composite applies colour transforms to rasters, rotates them, and blends two layers into one.
package composite

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidArgument reports a caller contract violation: empty or mismatched rasters, or an unsupported angle.
var ErrInvalidArgument = errors.New("invalid argument")

func checkRaster(name string, img *image.NRGBA) error {
	if img == nil {
		return fmt.Errorf("%w: %s raster is nil", ErrInvalidArgument, name)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("%w: %s raster is empty (%v)", ErrInvalidArgument, name, img.Bounds())
	}
	return nil
}

// newCanvas allocates an origin-based raster of the same size as b.
func newCanvas(b image.Rectangle) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
}

// row returns the w*4 bytes of row y (relative to the raster origin).
func row(img *image.NRGBA, y int) []byte {
	b := img.Bounds()
	start := img.PixOffset(b.Min.X, b.Min.Y+y)
	return img.Pix[start : start+b.Dx()*4]
}

// Clone copies src into a new origin-based raster.
func Clone(src *image.NRGBA) *image.NRGBA {
	dst := newCanvas(src.Bounds())
	for y := 0; y < dst.Bounds().Dy(); y++ {
		copy(row(dst, y), row(src, y))
	}
	return dst
}

// clampU8 rounds a 0..255 value to the nearest byte.
func clampU8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
