// Package docstore is a collection-scoped document store backed by SQLite.
// Documents are schemaless JSON field maps keyed by a server-assigned id,
// which keeps the rest of the engine working against the same contract the
// site's managed document database exposes: create, list ordered by a field,
// merge-update by id, delete by id.
package docstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Update and Delete when no document has the
// given id in the collection.
var ErrNotFound = errors.New("docstore: document not found")

// serverTimestamp is the sentinel type behind ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value. Any field set to it is replaced
// with the store's clock (RFC3339, UTC) at write time, so callers never
// stamp documents themselves.
var ServerTimestamp = serverTimestamp{}

// Document is one stored document: a server-assigned id plus its fields.
// Field values round-trip through JSON, so numbers come back as float64.
type Document struct {
	ID     string
	Fields map[string]any
}

// Str returns the named field as a string, or "" if absent or not a string.
func (d Document) Str(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Store wraps a SQLite database holding every collection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and
	// avoid an fsync per transaction with synchronous=NORMAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    fields TEXT NOT NULL,
    seq INTEGER,
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, seq);
`)
	return err
}

// Create stores a new document in the collection and returns its id.
// ServerTimestamp sentinel fields are resolved against the store's clock.
func (s *Store) Create(collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	data, err := s.marshalFields(fields)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(
		`INSERT INTO documents (collection, id, fields, seq) VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection = ?))`,
		collection, id, data, collection)
	if err != nil {
		return "", fmt.Errorf("docstore: create in %s: %w", collection, err)
	}
	return id, nil
}

// List returns every document in the collection. With a non-empty orderBy
// it sorts newest-first on that field (the store writes timestamps as
// RFC3339 strings, which sort lexicographically); otherwise insertion order.
func (s *Store) List(collection, orderBy string) ([]Document, error) {
	var rows *sql.Rows
	var err error
	if orderBy == "" {
		rows, err = s.db.Query(`SELECT id, fields FROM documents WHERE collection = ? ORDER BY seq`, collection)
	} else {
		rows, err = s.db.Query(
			`SELECT id, fields FROM documents WHERE collection = ? ORDER BY json_extract(fields, '$.' || ?) DESC`,
			collection, orderBy)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		fields := make(map[string]any)
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// Update merges partial fields into an existing document. Returns
// ErrNotFound if the id is absent from the collection.
func (s *Store) Update(collection, id string, partial map[string]any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRow(`SELECT fields FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
	}
	for k, v := range partial {
		fields[k] = v
	}
	merged, err := s.marshalFields(fields)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE documents SET fields = ? WHERE collection = ? AND id = ?`, merged, collection, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document by id. Returns ErrNotFound if the id is absent.
func (s *Store) Delete(collection, id string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) marshalFields(fields map[string]any) (string, error) {
	resolved := make(map[string]any, len(fields))
	stamp := s.now().UTC().Format(time.RFC3339)
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			resolved[k] = stamp
			continue
		}
		resolved[k] = v
	}
	data, err := json.Marshal(resolved)
	if err != nil {
		return "", fmt.Errorf("docstore: encode fields: %w", err)
	}
	return string(data), nil
}
