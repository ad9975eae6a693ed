package composite

// Helpers for the non-separable blend modes (Color, Hue, Saturation, Luminosity).
// Channels are normalised to [0,1].

func max3(a, b, c float64) float64 {
	if a < b {
		a = b
	}
	if a < c {
		a = c
	}
	return a
}

func min3(a, b, c float64) float64 {
	if a > b {
		a = b
	}
	if a > c {
		a = c
	}
	return a
}

// lum returns perceived luminance with the 0.30/0.59/0.11 weights.
func lum(r, g, b float64) float64 {
	return 0.30*r + 0.59*g + 0.11*b
}

func sat(r, g, b float64) float64 {
	return max3(r, g, b) - min3(r, g, b)
}

// clipColor pulls out-of-range channels back towards the luminance of the colour.
func clipColor(r, g, b float64) (float64, float64, float64) {
	l := lum(r, g, b)
	n := min3(r, g, b)
	x := max3(r, g, b)

	if n < 0 {
		r = l + (r-l)*l/(l-n)
		g = l + (g-l)*l/(l-n)
		b = l + (b-l)*l/(l-n)
	}
	if x > 1 {
		r = l + (r-l)*(1-l)/(x-l)
		g = l + (g-l)*(1-l)/(x-l)
		b = l + (b-l)*(1-l)/(x-l)
	}
	return r, g, b
}

func setLum(r, g, b, l float64) (float64, float64, float64) {
	d := l - lum(r, g, b)
	return clipColor(r+d, g+d, b+d)
}

// setSat rescales the colour so that max-min equals s, keeping the channel order.
func setSat(r, g, b, s float64) (float64, float64, float64) {
	c := [3]float64{r, g, b}

	hi, mid, lo := 0, 1, 2
	if c[hi] < c[mid] {
		hi, mid = mid, hi
	}
	if c[mid] < c[lo] {
		mid, lo = lo, mid
	}
	if c[hi] < c[mid] {
		hi, mid = mid, hi
	}

	if c[hi] > c[lo] {
		c[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
		c[hi] = s
	} else {
		c[mid], c[hi] = 0, 0
	}
	c[lo] = 0

	return c[0], c[1], c[2]
}
