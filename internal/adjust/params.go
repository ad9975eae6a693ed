package adjust

import (
	"fmt"
	"math"
)

// Params holds the slider values for one image layer.
type Params struct {
	Brightness float64 `mapstructure:"brightness" json:"brightness"`
	Contrast   float64 `mapstructure:"contrast" json:"contrast"`
	Saturation float64 `mapstructure:"saturation" json:"saturation"`
	Highlights float64 `mapstructure:"highlights" json:"highlights"`
	Shadows    float64 `mapstructure:"shadows" json:"shadows"`
	Rotation   int     `mapstructure:"rotation" json:"rotation"`
	Alpha      float64 `mapstructure:"alpha" json:"alpha"`
}

// DefaultParams returns neutral settings: every slider is a no-op.
func DefaultParams() Params {
	return Params{
		Brightness: 1,
		Contrast:   1,
		Saturation: 1,
		Alpha:      1,
	}
}

// Transform builds the colour transform for p. Rotation and Alpha do not take part.
func (p Params) Transform() ColorMatrix {
	return NewTransform(p.Brightness, p.Contrast, p.Saturation, p.Highlights, p.Shadows)
}

// IsNeutral reports whether p leaves the layer untouched.
func (p Params) IsNeutral() bool {
	return p.Transform().IsIdentity() && NormalizeRotation(p.Rotation) == 0 && p.Alpha == 1
}

// Validate rejects values the pipeline cannot honour.
// Slider values outside their usual range are allowed as long as they are finite.
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"brightness", p.Brightness},
		{"contrast", p.Contrast},
		{"saturation", p.Saturation},
		{"highlights", p.Highlights},
		{"shadows", p.Shadows},
		{"alpha", p.Alpha},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, f.v)
		}
	}

	if p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("alpha must be within [0,1], got %v", p.Alpha)
	}
	if p.Rotation%90 != 0 {
		return fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", p.Rotation)
	}

	return nil
}

// NormalizeRotation maps any multiple of 90 into {0, 90, 180, 270}.
func NormalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// NextRotation advances a rotation by a quarter turn clockwise.
func NextRotation(deg int) int {
	return NormalizeRotation(deg + 90)
}
