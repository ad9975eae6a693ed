package composite

import (
	"fmt"
	"math"
	"strings"
)

// BlendMode selects how a top layer's colour combines with the layer beneath it.
// Opacity is not part of the mode; Composite applies it afterwards.
type BlendMode int

const (
	Normal BlendMode = iota // source over: the top colour replaces the bottom
	Screen
	Multiply
	Overlay
	Darken
	Lighten
	Difference
	Color
	HardLight
	SoftLight
	ColorDodge
	ColorBurn
	Exclusion
	Hue
	Saturation
	Luminosity
	Plus
)

var modeNames = map[BlendMode]string{
	Normal:     "normal",
	Screen:     "screen",
	Multiply:   "multiply",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	Difference: "difference",
	Color:      "color",
	HardLight:  "hardlight",
	SoftLight:  "softlight",
	ColorDodge: "colordodge",
	ColorBurn:  "colorburn",
	Exclusion:  "exclusion",
	Hue:        "hue",
	Saturation: "saturation",
	Luminosity: "luminosity",
	Plus:       "plus",
}

// Modes returns every supported blend mode in declaration order.
func Modes() []BlendMode {
	modes := make([]BlendMode, 0, len(modeNames))
	for m := Normal; m <= Plus; m++ {
		modes = append(modes, m)
	}
	return modes
}

func (m BlendMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// ParseBlendMode resolves a mode name. Case, dashes and underscores are ignored,
// and "srcover"/"src-over" are accepted as aliases of normal.
func ParseBlendMode(s string) (BlendMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	if key == "srcover" || key == "sourceover" {
		return Normal, nil
	}
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return Normal, fmt.Errorf("unknown blend mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(text []byte) error {
	parsed, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// blendPixel combines a backdrop colour (br,bg,bb) with a source colour (sr,sg,sb).
// All channels are in [0,1]. Unknown modes fall back to Normal.
func blendPixel(m BlendMode, br, bg, bb, sr, sg, sb float64) (float64, float64, float64) {
	switch m {
	case Color:
		return setLum(sr, sg, sb, lum(br, bg, bb))
	case Hue:
		r, g, b := setSat(sr, sg, sb, sat(br, bg, bb))
		return setLum(r, g, b, lum(br, bg, bb))
	case Saturation:
		r, g, b := setSat(br, bg, bb, sat(sr, sg, sb))
		return setLum(r, g, b, lum(br, bg, bb))
	case Luminosity:
		return setLum(br, bg, bb, lum(sr, sg, sb))
	}

	f := channelFunc(m)
	return f(br, sr), f(bg, sg), f(bb, sb)
}

func channelFunc(m BlendMode) func(b, s float64) float64 {
	switch m {
	case Screen:
		return screen
	case Multiply:
		return multiply
	case Overlay:
		return overlay
	case HardLight:
		return hardLight
	case Darken:
		return math.Min
	case Lighten:
		return math.Max
	case Difference:
		return difference
	case SoftLight:
		return softLight
	case ColorDodge:
		return colorDodge
	case ColorBurn:
		return colorBurn
	case Exclusion:
		return exclusion
	case Plus:
		return plus
	default:
		return normal
	}
}

func normal(_, s float64) float64 { return s }

func screen(b, s float64) float64 { return 1 - (1-b)*(1-s) }

func multiply(b, s float64) float64 { return b * s }

func difference(b, s float64) float64 { return math.Abs(b - s) }

func exclusion(b, s float64) float64 { return b + s - 2*b*s }

func plus(b, s float64) float64 { return math.Min(1, b+s) }

// overlay switches between multiply and screen on the backdrop value.
func overlay(b, s float64) float64 {
	if b <= 0.5 {
		return 2 * b * s
	}
	return 1 - 2*(1-b)*(1-s)
}

// hardLight is overlay with the operands swapped.
func hardLight(b, s float64) float64 {
	return overlay(s, b)
}

func softLight(b, s float64) float64 {
	if s <= 0.5 {
		return b - (1-2*s)*b*(1-b)
	}
	var d float64
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	} else {
		d = math.Sqrt(b)
	}
	return b + (2*s-1)*(d-b)
}

func colorDodge(b, s float64) float64 {
	switch {
	case b == 0:
		return 0
	case s >= 1:
		return 1
	default:
		return math.Min(1, b/(1-s))
	}
}

func colorBurn(b, s float64) float64 {
	switch {
	case b >= 1:
		return 1
	case s <= 0:
		return 0
	default:
		return 1 - math.Min(1, (1-b)/s)
	}
}
