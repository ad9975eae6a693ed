package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/MeKo-Tech/photoblend/internal/imageio"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when an archive has no export with the requested id.
var ErrNotFound = errors.New("export not found")

const locationScheme = "sqlite://"

// ArchiveInfo is stored in the archive's metadata table.
type ArchiveInfo struct {
	Name        string
	Description string
	Version     string
}

// ToMap converts ArchiveInfo to metadata rows.
func (a ArchiveInfo) ToMap() map[string]string {
	result := map[string]string{"format": "png"}
	if a.Name != "" {
		result["name"] = a.Name
	}
	if a.Description != "" {
		result["description"] = a.Description
	}
	if a.Version != "" {
		result["version"] = a.Version
	}
	return result
}

// Record is one stored export.
type Record struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Width     int
	Height    int
	Mode      string
	Bottom    adjust.Params
	Top       adjust.Params
	Data      []byte // PNG, empty in List results
}

type storedParams struct {
	Bottom adjust.Params `json:"bottom"`
	Top    adjust.Params `json:"top"`
}

// Archive stores composites as PNG blobs in a sqlite database.
type Archive struct {
	db          *sql.DB
	path        string
	prefix      string
	compression png.CompressionLevel
	mu          sync.Mutex
}

// OpenArchive opens or creates an archive at path and records info in its metadata.
func OpenArchive(path string, info ArchiveInfo, prefix string, compression png.CompressionLevel) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertInfo(db, info); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Archive{
		db:          db,
		path:        path,
		prefix:      prefix,
		compression: compression,
	}, nil
}

// OpenArchiveReader opens an existing archive read-only.
func OpenArchiveReader(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='exports'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain exports table")
	}

	return &Archive{db: db, path: path}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS exports (
			id TEXT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			blend_mode TEXT NOT NULL,
			params TEXT NOT NULL,
			image_data BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS exports_created_at ON exports (created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func insertInfo(db *sql.DB, info ArchiveInfo) error {
	stmt, err := db.Prepare("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range info.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}
	return nil
}

// Store encodes img as PNG, inserts it and returns a sqlite://<path>#<id> location.
func (a *Archive) Store(ctx context.Context, img *image.NRGBA, meta Meta) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nothing to store")
	}

	meta = withTimestamp(meta)
	id := uuid.New()

	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, img, a.compression); err != nil {
		return "", err
	}

	params, err := json.Marshal(storedParams{Bottom: meta.Bottom, Top: meta.Top})
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO exports (id, name, created_at, width, height, blend_mode, params, image_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		exportName(a.prefix, meta, id),
		meta.CreatedAt.UnixMilli(),
		img.Bounds().Dx(),
		img.Bounds().Dy(),
		meta.Mode,
		string(params),
		buf.Bytes(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert export: %w", err)
	}

	return Location(a.path, id.String()), nil
}

// Get returns a stored export including its PNG data.
func (a *Archive) Get(ctx context.Context, id string) (*Record, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, width, height, blend_mode, params, image_data
		 FROM exports WHERE id = ?`, id)

	rec, err := scanRecord(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query export: %w", err)
	}
	return rec, nil
}

// List returns every export without image data, oldest first.
func (a *Archive) List(ctx context.Context) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, created_at, width, height, blend_mode, params
		 FROM exports ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}
	return records, nil
}

// Info reads the archive metadata.
func (a *Archive) Info(ctx context.Context) (ArchiveInfo, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return ArchiveInfo{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return ArchiveInfo{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		meta[name] = value
	}
	if err := rows.Err(); err != nil {
		return ArchiveInfo{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return ArchiveInfo{
		Name:        meta["name"],
		Description: meta["description"],
		Version:     meta["version"],
	}, nil
}

func scanRecord(scan func(dest ...any) error, withData bool) (*Record, error) {
	var (
		rec       Record
		createdAt int64
		params    string
	)
	dest := []any{&rec.ID, &rec.Name, &createdAt, &rec.Width, &rec.Height, &rec.Mode, &params}
	if withData {
		dest = append(dest, &rec.Data)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}

	var p storedParams
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		return nil, fmt.Errorf("failed to decode params of %s: %w", rec.ID, err)
	}
	rec.Bottom = p.Bottom
	rec.Top = p.Top
	rec.CreatedAt = time.UnixMilli(createdAt)

	return &rec, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Location formats an archive location.
func Location(path, id string) string {
	return locationScheme + path + "#" + id
}

// ParseLocation splits a sqlite://<path>#<id> location.
func ParseLocation(loc string) (path, id string, err error) {
	rest, ok := strings.CutPrefix(loc, locationScheme)
	if !ok {
		return "", "", fmt.Errorf("location %q is not an archive location", loc)
	}
	i := strings.LastIndex(rest, "#")
	if i <= 0 || i == len(rest)-1 {
		return "", "", fmt.Errorf("location %q must look like %s<path>#<id>", loc, locationScheme)
	}
	return rest[:i], rest[i+1:], nil
}
