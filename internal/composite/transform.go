package composite

import (
	"image"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
)

// ApplyTransform maps every pixel of src through m and returns a new raster of the same size.
// Channels are rounded and clamped to [0,255]. Alpha passes through unless m maps it.
func ApplyTransform(src *image.NRGBA, m adjust.ColorMatrix) (*image.NRGBA, error) {
	if err := checkRaster("source", src); err != nil {
		return nil, err
	}

	if m.IsIdentity() {
		return Clone(src), nil
	}

	dst := newCanvas(src.Bounds())
	mapsAlpha := m.MapsAlpha()
	h := dst.Bounds().Dy()

	for y := 0; y < h; y++ {
		in := row(src, y)
		out := row(dst, y)

		for i := 0; i < len(in); i += 4 {
			r, g, b, a := m.Apply(float64(in[i]), float64(in[i+1]), float64(in[i+2]), float64(in[i+3]))

			out[i] = clampU8(r)
			out[i+1] = clampU8(g)
			out[i+2] = clampU8(b)
			if mapsAlpha {
				out[i+3] = clampU8(a)
			} else {
				out[i+3] = in[i+3]
			}
		}
	}

	return dst, nil
}
