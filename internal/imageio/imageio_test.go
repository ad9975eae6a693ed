package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestLoadRoundTripsPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	path := filepath.Join(t.TempDir(), "nested", "src.png")
	if err := SavePNG(path, src, png.BestSpeed); err != nil {
		t.Fatalf("SavePNG returned error: %v", err)
	}

	got, format, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png format, got %s", format)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds mismatch: got %v, want %v", got.Bounds(), src.Bounds())
	}
	if got.NRGBAAt(0, 0) != src.NRGBAAt(0, 0) || got.NRGBAAt(2, 1) != src.NRGBAAt(2, 1) {
		t.Fatalf("pixels changed across png round trip")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestToNRGBARebasesAndConverts(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(4, 4, 6, 5))
	rgba.SetRGBA(4, 4, color.RGBA{R: 100, G: 50, B: 0, A: 128})

	out := ToNRGBA(rgba)
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("expected origin-based bounds, got %v", out.Bounds())
	}

	c := out.NRGBAAt(0, 0)
	if c.A != 128 || c.R < 198 || c.R > 200 {
		t.Fatalf("premultiplied colour not converted: %+v", c)
	}

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if ToNRGBA(n) != n {
		t.Fatal("origin-based NRGBA should be returned unchanged")
	}
}

func TestParseCompression(t *testing.T) {
	tests := map[string]png.CompressionLevel{
		"":        png.DefaultCompression,
		"default": png.DefaultCompression,
		"speed":   png.BestSpeed,
		"BEST":    png.BestCompression,
		"none":    png.NoCompression,
	}
	for in, want := range tests {
		got, err := ParseCompression(in)
		if err != nil {
			t.Fatalf("ParseCompression(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCompression(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseCompression("ultra"); err == nil {
		t.Fatal("expected error for unknown compression")
	}
}
