package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
)

func testImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "exports.db")

	a, err := OpenArchive(dbPath, ArchiveInfo{Name: "Test Archive", Version: "1.0"}, "", png.BestSpeed)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	top := adjust.DefaultParams()
	top.Brightness = 1.2
	top.Alpha = 0.5

	created := time.UnixMilli(1700000000000)
	loc, err := a.Store(ctx, testImage(4, 3, color.NRGBA{R: 200, G: 10, B: 20, A: 255}), Meta{
		Mode:      "multiply",
		Bottom:    adjust.DefaultParams(),
		Top:       top,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Failed to store export: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	path, id, err := ParseLocation(loc)
	if err != nil {
		t.Fatalf("Failed to parse location %q: %v", loc, err)
	}
	if path != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, path)
	}

	r, err := OpenArchiveReader(path)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	rec, err := r.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get export: %v", err)
	}
	if rec.Width != 4 || rec.Height != 3 {
		t.Errorf("Expected 4x3, got %dx%d", rec.Width, rec.Height)
	}
	if rec.Mode != "multiply" {
		t.Errorf("Expected mode multiply, got %s", rec.Mode)
	}
	if rec.Top != top {
		t.Errorf("Top params mismatch: got %+v, want %+v", rec.Top, top)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("Expected created_at %v, got %v", created, rec.CreatedAt)
	}
	if !strings.HasPrefix(rec.Name, DefaultPrefix+"_1700000000000_") {
		t.Errorf("Unexpected generated name %q", rec.Name)
	}

	img, err := png.Decode(bytes.NewReader(rec.Data))
	if err != nil {
		t.Fatalf("Stored data is not a PNG: %v", err)
	}
	if got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA); got != (color.NRGBA{R: 200, G: 10, B: 20, A: 255}) {
		t.Errorf("Unexpected pixel %+v", got)
	}

	info, err := r.Info(ctx)
	if err != nil {
		t.Fatalf("Failed to read info: %v", err)
	}
	if info.Name != "Test Archive" || info.Version != "1.0" {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestArchive_ListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "exports.db")

	a, err := OpenArchive(dbPath, ArchiveInfo{}, "blend", png.BestSpeed)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer a.Close()

	img := testImage(2, 2, color.NRGBA{A: 255})
	for i, name := range []string{"second", "first"} {
		_, err := a.Store(ctx, img, Meta{Name: name, Mode: "normal", CreatedAt: time.UnixMilli(int64(2000 - i*1000))})
		if err != nil {
			t.Fatalf("Failed to store %s: %v", name, err)
		}
	}

	records, err := a.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Name != "first" || records[1].Name != "second" {
		t.Errorf("Unexpected order: %s, %s", records[0].Name, records[1].Name)
	}
	if len(records[0].Data) != 0 {
		t.Error("List should not load image data")
	}
}

func TestArchive_GetMissing(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "exports.db"), ArchiveInfo{}, "", png.DefaultCompression)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer a.Close()

	_, err = a.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestOpenArchiveReader_MissingTable(t *testing.T) {
	if _, err := OpenArchiveReader(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatal("Expected error opening an archive that does not exist")
	}
}

func TestParseLocation(t *testing.T) {
	path, id, err := ParseLocation("sqlite:///tmp/a#b.db#1234")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != "/tmp/a#b.db" || id != "1234" {
		t.Errorf("Got path=%q id=%q", path, id)
	}

	for _, bad := range []string{"/tmp/out.png", "sqlite://", "sqlite://file.db", "sqlite://file.db#", "sqlite://#id"} {
		if _, _, err := ParseLocation(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
