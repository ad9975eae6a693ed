package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/photoblend/internal/imageio"
	"github.com/google/uuid"
)

// FolderStore writes each composite as a PNG file in a directory.
type FolderStore struct {
	dir         string
	prefix      string
	compression png.CompressionLevel
	overwrite   bool
}

// NewFolderStore creates dir if needed and returns a store writing into it.
func NewFolderStore(dir, prefix string, compression png.CompressionLevel, overwrite bool) (*FolderStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	return &FolderStore{
		dir:         dir,
		prefix:      prefix,
		compression: compression,
		overwrite:   overwrite,
	}, nil
}

// Store encodes img as PNG and returns the file path.
func (s *FolderStore) Store(ctx context.Context, img *image.NRGBA, meta Meta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil {
		return "", fmt.Errorf("nothing to store")
	}

	meta = withTimestamp(meta)
	path := filepath.Join(s.dir, exportName(s.prefix, meta, uuid.New())+".png")

	if !s.overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("export %s already exists", path)
		}
	}

	if err := imageio.SavePNG(path, img, s.compression); err != nil {
		return "", err
	}
	return path, nil
}

// Close is a no-op; files are closed as they are written.
func (s *FolderStore) Close() error {
	return nil
}
