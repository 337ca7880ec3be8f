// Package store implements a path-addressed document store on top of SQLite.
//
// Every record is a JSON document keyed by a hierarchical string path such as
// "users/<id>/evidence" or "cases/available/<id>". Callers read a whole
// document, mutate it in memory, and write it back; the last writer wins.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/sqlite"
)

type Store struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func New(db *sqlite.Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("source", "store"),
	}
}

// Get returns the document at path, or nil when no document exists.
func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var body string
	stmt := `SELECT body FROM documents WHERE path = ?`
	if err := s.db.ReadOnly.GetContext(ctx, &body, stmt, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read document", slog.String("path", path))
	}
	return json.RawMessage(body), nil
}

// Put serialises doc as JSON and overwrites the document at path.
func (s *Store) Put(ctx context.Context, path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document", slog.String("path", path))
	}
	stmt := `INSERT INTO documents (path, body, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (path) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err = s.db.ReadWrite.ExecContext(ctx, stmt, path, string(body), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return errors.Wrap(err, "write document", slog.String("path", path))
	}
	return nil
}

// Delete removes the document at path. Deleting a missing document is a no-op.
func (s *Store) Delete(ctx context.Context, path string) error {
	stmt := `DELETE FROM documents WHERE path = ?`
	if _, err := s.db.ReadWrite.ExecContext(ctx, stmt, path); err != nil {
		return errors.Wrap(err, "delete document", slog.String("path", path))
	}
	return nil
}

// List returns the paths of all documents whose path starts with prefix, in
// lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	// substr comparison instead of LIKE so that '%' and '_' in paths need no escaping.
	stmt := `SELECT path FROM documents WHERE substr(path, 1, length(?)) = ? ORDER BY path`
	if err := s.db.ReadOnly.SelectContext(ctx, &paths, stmt, prefix, prefix); err != nil {
		return nil, errors.Wrap(err, "list documents", slog.String("prefix", prefix))
	}
	return paths, nil
}
