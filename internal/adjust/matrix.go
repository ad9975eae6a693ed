// Package adjust builds per-layer tonal adjustment transforms.
package adjust

// ColorMatrix is a 4x5 affine colour transform in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Channel values and the bias column are in the 0..255 domain.
type ColorMatrix [20]float64

// Identity returns the transform that leaves every channel unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// IsIdentity reports whether m maps every colour to itself.
func (m ColorMatrix) IsIdentity() bool {
	return m == Identity()
}

// Concat returns the transform equivalent to applying b first and then a.
func Concat(a, b ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[row*5+k] * b[k*5+col]
			}
			if col == 4 {
				sum += a[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// PostConcat returns m followed by next: the new stage runs after every stage already in m.
func (m ColorMatrix) PostConcat(next ColorMatrix) ColorMatrix {
	return Concat(next, m)
}

// PreConcat returns prev followed by m.
func (m ColorMatrix) PreConcat(prev ColorMatrix) ColorMatrix {
	return Concat(m, prev)
}

// Apply maps one colour through the transform. The result is not clamped.
func (m ColorMatrix) Apply(r, g, b, a float64) (float64, float64, float64, float64) {
	return m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4],
		m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9],
		m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14],
		m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
}

// MapsAlpha reports whether the alpha row differs from pass-through.
func (m ColorMatrix) MapsAlpha() bool {
	return m[15] != 0 || m[16] != 0 || m[17] != 0 || m[18] != 1 || m[19] != 0
}
