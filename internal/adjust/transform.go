package adjust

// Luminance weights used by the saturation stage.
const (
	lumR = 0.213
	lumG = 0.715
	lumB = 0.072
)

// ContrastPivot is the channel value left unchanged by the contrast stage.
const ContrastPivot = 128.0

// Scale of the highlights and shadows sliders in channel units.
const (
	highlightsScale = 100.0
	shadowsScale    = 100.0
)

// SaturationMatrix returns a luminance-preserving saturation transform.
// s=1 is the identity, s=0 produces grayscale, s>1 pushes colours away from their luminance.
func SaturationMatrix(s float64) ColorMatrix {
	inv := 1 - s
	r := lumR * inv
	g := lumG * inv
	b := lumB * inv

	return ColorMatrix{
		r + s, g, b, 0, 0,
		r, g + s, b, 0, 0,
		r, g, b + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales R, G and B around ContrastPivot. Alpha is untouched.
func ContrastMatrix(c float64) ColorMatrix {
	offset := (1 - c) * ContrastPivot

	return ColorMatrix{
		c, 0, 0, 0, offset,
		0, c, 0, 0, offset,
		0, 0, c, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// BiasMatrix adds the same offset to R, G and B.
func BiasMatrix(bias float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, bias,
		0, 1, 0, 0, bias,
		0, 0, 1, 0, bias,
		0, 0, 0, 1, 0,
	}
}

// ToneBias combines brightness, highlights and shadows into one additive offset.
// Raising highlights brightens the whole layer by up to 100 units, raising shadows darkens it by up to 100.
func ToneBias(brightness, highlights, shadows float64) float64 {
	return (brightness-1)*255 + highlights*highlightsScale - shadows*shadowsScale
}

// NewTransform builds the layer transform: saturation, then contrast, then the tone bias.
// Any finite input is accepted; extreme values produce extreme but defined matrices.
func NewTransform(brightness, contrast, saturation, highlights, shadows float64) ColorMatrix {
	return Identity().
		PostConcat(SaturationMatrix(saturation)).
		PostConcat(ContrastMatrix(contrast)).
		PostConcat(BiasMatrix(ToneBias(brightness, highlights, shadows)))
}
