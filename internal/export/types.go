// Package export encodes finished composites and stores them in a folder or a sqlite archive.
package export

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/google/uuid"
)

// Store persists an encoded composite and returns where it ended up.
type Store interface {
	Store(ctx context.Context, img *image.NRGBA, meta Meta) (string, error)
	Close() error
}

// Meta describes the edit that produced a composite.
type Meta struct {
	Name      string // optional base name; generated when empty
	Mode      string // blend mode name
	Bottom    adjust.Params
	Top       adjust.Params
	CreatedAt time.Time
}

// DefaultPrefix is used for generated export names.
const DefaultPrefix = "photoblend"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportName returns a filesystem-safe base name for an export.
func exportName(prefix string, meta Meta, id uuid.UUID) string {
	if name := strings.Trim(unsafeName.ReplaceAllString(meta.Name, "_"), "._"); name != "" {
		return name
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%d_%s", prefix, meta.CreatedAt.UnixMilli(), id.String()[:8])
}

func withTimestamp(meta Meta) Meta {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	return meta
}
