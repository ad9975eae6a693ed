package adjust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestNeutralTransformIsIdentity(t *testing.T) {
	m := NewTransform(1, 1, 1, 0, 0)
	require.True(t, m.IsIdentity(), "neutral sliders should give the identity matrix, got %v", m)
	require.True(t, DefaultParams().Transform().IsIdentity())
	require.True(t, DefaultParams().IsNeutral())
}

func TestSaturationZeroIsGrayscale(t *testing.T) {
	m := NewTransform(1, 1, 0, 0, 0)

	r, g, b, a := m.Apply(255, 0, 0, 255)
	assert.InDelta(t, r, g, eps)
	assert.InDelta(t, g, b, eps)
	assert.InDelta(t, 0.213*255, r, eps)
	assert.Equal(t, 255.0, a)
}

func TestSaturationAboveOneMovesAwayFromLuminance(t *testing.T) {
	m := SaturationMatrix(2)
	r, g, b, _ := m.Apply(200, 100, 50, 255)
	lum := lumR*200 + lumG*100 + lumB*50

	assert.Greater(t, r-lum, 200-lum)
	assert.Less(t, g-lum, 100-lum)
	assert.Less(t, b-lum, 50-lum)

	// Luminance itself is preserved.
	assert.InDelta(t, lum, lumR*r+lumG*g+lumB*b, 1e-6)
}

func TestContrastPivotInvariance(t *testing.T) {
	for _, c := range []float64{0, 0.25, 0.5, 1, 1.5, 2, 7.3} {
		m := ContrastMatrix(c)
		r, g, b, a := m.Apply(ContrastPivot, ContrastPivot, ContrastPivot, 255)
		assert.InDelta(t, ContrastPivot, r, eps, "contrast %v", c)
		assert.InDelta(t, ContrastPivot, g, eps, "contrast %v", c)
		assert.InDelta(t, ContrastPivot, b, eps, "contrast %v", c)
		assert.Equal(t, 255.0, a)
	}
}

func TestToneBias(t *testing.T) {
	tests := []struct {
		name                            string
		brightness, highlights, shadows float64
		want                            float64
	}{
		{"neutral", 1, 0, 0, 0},
		{"brighter", 1.5, 0, 0, 127.5},
		{"black", 0, 0, 0, -255},
		{"highlights", 1, 1, 0, 100},
		{"shadows", 1, 0, 1, -100},
		{"combined", 1.2, 0.5, 0.25, 51 + 50 - 25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ToneBias(tc.brightness, tc.highlights, tc.shadows), 1e-9)
		})
	}
}

func TestStageOrderContrastBeforeBias(t *testing.T) {
	m := NewTransform(1.2, 2, 1, 0, 0)
	r, _, _, _ := m.Apply(100, 100, 100, 255)

	// contrast first: 2*100 - 128 = 72, then +51
	assert.InDelta(t, 123.0, r, 1e-9)

	reversed := Identity().PostConcat(BiasMatrix(51)).PostConcat(ContrastMatrix(2))
	rr, _, _, _ := reversed.Apply(100, 100, 100, 255)
	assert.InDelta(t, 174.0, rr, 1e-9)
}

func TestConcatMatchesSequentialApplication(t *testing.T) {
	stages := []ColorMatrix{
		SaturationMatrix(0.4),
		ContrastMatrix(1.7),
		BiasMatrix(-33),
	}

	combined := Identity()
	for _, s := range stages {
		combined = combined.PostConcat(s)
	}

	in := [4]float64{12, 200, 97, 180}
	r, g, b, a := in[0], in[1], in[2], in[3]
	for _, s := range stages {
		r, g, b, a = s.Apply(r, g, b, a)
	}

	cr, cg, cb, ca := combined.Apply(in[0], in[1], in[2], in[3])
	assert.InDelta(t, r, cr, 1e-9)
	assert.InDelta(t, g, cg, 1e-9)
	assert.InDelta(t, b, cb, 1e-9)
	assert.InDelta(t, a, ca, 1e-9)

	// PreConcat is the mirror image of PostConcat.
	assert.Equal(t, BiasMatrix(5).PostConcat(ContrastMatrix(2)), ContrastMatrix(2).PreConcat(BiasMatrix(5)))
}

func TestExtremeInputsStayFinite(t *testing.T) {
	m := NewTransform(100, -50, 1e6, -3, 42)
	for i, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("element %d not finite: %v", i, v)
		}
	}
	assert.False(t, m.MapsAlpha())
}

func TestParamsValidate(t *testing.T) {
	ok := DefaultParams()
	ok.Rotation = -90
	require.NoError(t, ok.Validate())

	bad := DefaultParams()
	bad.Rotation = 45
	require.Error(t, bad.Validate())

	bad = DefaultParams()
	bad.Contrast = math.NaN()
	require.Error(t, bad.Validate())

	bad = DefaultParams()
	bad.Alpha = 1.5
	require.Error(t, bad.Validate())
}

func TestRotationHelpers(t *testing.T) {
	assert.Equal(t, 0, NormalizeRotation(360))
	assert.Equal(t, 270, NormalizeRotation(-90))
	assert.Equal(t, 90, NextRotation(0))
	assert.Equal(t, 0, NextRotation(270))
}
