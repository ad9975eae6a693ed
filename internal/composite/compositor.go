package composite

import (
	"fmt"
	"image"
)

// Composite blends top over bottom and returns a new raster of the shared canvas size.
//
// The two opacities are independent layer multipliers, not a combined alpha.
// The bottom layer is first scaled by alphaBottom against a black background.
// The blend mode then combines that scaled bottom with top, and the result is
// mixed back over the scaled bottom by alphaTop. Output alpha moves from the
// bottom's alpha to the top's alpha by alphaTop. Opacities are clamped to [0,1].
//
// Both rasters must be non-empty and the same size; resampling to a common
// frame is the caller's job.
func Composite(bottom, top *image.NRGBA, mode BlendMode, alphaBottom, alphaTop float64) (*image.NRGBA, error) {
	if err := checkRaster("bottom", bottom); err != nil {
		return nil, err
	}
	if err := checkRaster("top", top); err != nil {
		return nil, err
	}

	bb, tb := bottom.Bounds(), top.Bounds()
	if bb.Dx() != tb.Dx() || bb.Dy() != tb.Dy() {
		return nil, fmt.Errorf("%w: top size %dx%d does not match bottom %dx%d",
			ErrInvalidArgument, tb.Dx(), tb.Dy(), bb.Dx(), bb.Dy())
	}

	alphaBottom = clamp01(alphaBottom)
	alphaTop = clamp01(alphaTop)

	dst := newCanvas(bb)
	h := dst.Bounds().Dy()

	for y := 0; y < h; y++ {
		bp := row(bottom, y)
		tp := row(top, y)
		out := row(dst, y)

		for i := 0; i < len(out); i += 4 {
			br := float64(bp[i]) / 255 * alphaBottom
			bg := float64(bp[i+1]) / 255 * alphaBottom
			bbl := float64(bp[i+2]) / 255 * alphaBottom

			sr := float64(tp[i]) / 255
			sg := float64(tp[i+1]) / 255
			sb := float64(tp[i+2]) / 255

			r, g, b := blendPixel(mode, br, bg, bbl, sr, sg, sb)

			out[i] = clampU8(lerp(br, r, alphaTop) * 255)
			out[i+1] = clampU8(lerp(bg, g, alphaTop) * 255)
			out[i+2] = clampU8(lerp(bbl, b, alphaTop) * 255)
			out[i+3] = clampU8(lerp(float64(bp[i+3]), float64(tp[i+3]), alphaTop))
		}
	}

	return dst, nil
}
