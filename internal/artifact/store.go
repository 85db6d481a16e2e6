package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/google/uuid"
)

// handleScheme prefixes every retrievable artifact handle.
const handleScheme = "mem://"

// Store keeps encoded report artifacts retrievable by handle until the
// store is closed.
//
// Design decision: Artifacts live in an in-memory SQLite database rather
// than a plain map:
//  1. Blobs carry metadata (kind, content type, creation time) that the
//     presentation layer queries independently of the bytes
//  2. Close tears down every handle at once, matching the process-lifetime
//     guarantee
//  3. A file-backed DSN turns downloads persistent without code changes
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dsn is the SQLite data source the store was opened with.
	dsn string
}

// Option configures a Store.
type Option func(*Store)

// WithDSN sets the SQLite data source. The default is an in-memory
// database that lives as long as the store.
func WithDSN(dsn string) Option {
	return func(s *Store) {
		s.dsn = dsn
	}
}

// NewStore opens the artifact store and creates its schema.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{dsn: ":memory:"}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact database: %w", err)
	}

	// A single never-recycled connection: SQLite only supports one writer,
	// and recycling the connection would drop an in-memory database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s.db = db
	if err := s.createTable(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create artifact schema: %w", err)
	}
	return s, nil
}

// Close drops the database connection. For the default in-memory DSN this
// revokes every stored handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTable creates the artifact schema if it doesn't exist.
func (s *Store) createTable() error {
	schema := `
	-- Artifacts store encoded report documents addressable by handle
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		content_type TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_kind ON artifacts(kind);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Artifact is one stored artifact.
type Artifact struct {
	// ID is the unique identifier inside the handle.
	ID string

	// Kind groups artifacts by producer, e.g. "reports".
	Kind string

	// ContentType is the MIME type of the data.
	ContentType string

	// Data is the encoded document.
	Data []byte

	// CreatedAt is the storage time.
	CreatedAt time.Time
}

// Put stores an artifact and returns its retrievable handle,
// mem://<kind>/<id>. The kind must be non-empty and must not contain a
// slash; it becomes a handle path segment.
func (s *Store) Put(ctx context.Context, kind, contentType string, data []byte) (string, error) {
	if kind == "" || strings.Contains(kind, "/") {
		return "", fmt.Errorf("%w: kind %q", ErrInvalidHandle, kind)
	}

	id := uuid.NewString()
	query := `INSERT INTO artifacts (id, kind, content_type, data) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, kind, contentType, data); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	return handleScheme + kind + "/" + id, nil
}

// Resolve returns the artifact a handle refers to.
func (s *Store) Resolve(ctx context.Context, handle string) (*Artifact, error) {
	kind, id, err := parseHandle(handle)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, kind, content_type, data, created_at FROM artifacts WHERE id = ? AND kind = ?`
	row := s.db.QueryRowContext(ctx, query, id, kind)

	var a Artifact
	var createdAt string
	if err := row.Scan(&a.ID, &a.Kind, &a.ContentType, &a.Data, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %q", ErrArtifactNotFound, handle)
		}
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	a.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact timestamp: %w", err)
	}
	return &a, nil
}

// Revoke deletes the artifact a handle refers to. Resolving the handle
// afterwards fails with ErrArtifactNotFound.
func (s *Store) Revoke(ctx context.Context, handle string) error {
	kind, id, err := parseHandle(handle)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ? AND kind = ?`, id, kind)
	if err != nil {
		return fmt.Errorf("failed to revoke artifact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revocation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrArtifactNotFound, handle)
	}
	return nil
}

// parseHandle splits mem://<kind>/<id> into its parts.
func parseHandle(handle string) (kind, id string, err error) {
	rest, ok := strings.CutPrefix(handle, handleScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	kind, id, ok = strings.Cut(rest, "/")
	if !ok || kind == "" || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return kind, id, nil
}

// timestampFormats lists the layouts SQLite may hand back for DATETIME
// columns, most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(value string) (time.Time, error) {
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", value)
}
