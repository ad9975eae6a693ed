package export

import (
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFolderStore_WritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	s, err := NewFolderStore(dir, "Multex_Image", png.BestSpeed, false)
	if err != nil {
		t.Fatalf("Failed to create folder store: %v", err)
	}
	defer s.Close()

	path, err := s.Store(context.Background(), testImage(3, 3, color.NRGBA{R: 9, A: 255}), Meta{CreatedAt: time.UnixMilli(42)})
	if err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Expected file in %s, got %s", dir, path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "Multex_Image_42_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("Unexpected file name %q", base)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("Export is not a valid PNG: %v", err)
	}
}

func TestFolderStore_NamedExportNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	img := testImage(1, 1, color.NRGBA{A: 255})

	s, err := NewFolderStore(dir, "", png.BestSpeed, false)
	if err != nil {
		t.Fatalf("Failed to create folder store: %v", err)
	}

	path, err := s.Store(context.Background(), img, Meta{Name: "my edit/v1"})
	if err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if filepath.Base(path) != "my_edit_v1.png" {
		t.Errorf("Expected sanitized name, got %s", filepath.Base(path))
	}

	if _, err := s.Store(context.Background(), img, Meta{Name: "my edit/v1"}); err == nil {
		t.Error("Expected error when export already exists")
	}

	s.overwrite = true
	if _, err := s.Store(context.Background(), img, Meta{Name: "my edit/v1"}); err != nil {
		t.Errorf("Overwrite should succeed: %v", err)
	}
}

func TestFolderStore_CancelledContext(t *testing.T) {
	s, err := NewFolderStore(t.TempDir(), "", png.BestSpeed, false)
	if err != nil {
		t.Fatalf("Failed to create folder store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Store(ctx, testImage(1, 1, color.NRGBA{}), Meta{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestNewFolderStore_EmptyDir(t *testing.T) {
	if _, err := NewFolderStore("", "", png.BestSpeed, false); err == nil {
		t.Error("Expected error for empty directory")
	}
}
