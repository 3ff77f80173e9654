package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/fieldmask"
)

// =============================================================================
// Local Store
// =============================================================================
//
// LocalStore serves the Store contract from an on-disk database so the
// editor keeps working when the remote store is unreachable. Documents
// are stored as wire-format bodies keyed by (namespace, id); Patch
// applies the field mask locally through the same merge the remote
// store performs on its side.

const (
	// DefaultLocalStorePath is the default database location relative to
	// the user's home directory.
	DefaultLocalStorePath = ".dossier/local.db"

	localMaxOpenConns = 1
)

var (
	// ErrLocalStoreClosed indicates the store has been closed.
	ErrLocalStoreClosed = errors.New("local store is closed")
)

// LocalStore is an offline Store backed by SQLite.
type LocalStore struct {
	db     *sql.DB
	logger *slog.Logger
	closed bool
}

// NewLocalStore opens (creating if needed) the local database at path.
// An empty path uses DefaultLocalStorePath under the home directory.
func NewLocalStore(path string, logger *slog.Logger) (*LocalStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("local store: %w", err)
		}
		path = filepath.Join(home, DefaultLocalStorePath)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("local store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("local store: open database: %w", err)
	}
	db.SetMaxOpenConns(localMaxOpenConns)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("local store: enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		namespace  TEXT NOT NULL,
		doc_id     TEXT NOT NULL,
		body       BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (namespace, doc_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("local store: create schema: %w", err)
	}

	return &LocalStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	if s.closed {
		return ErrLocalStoreClosed
	}
	s.closed = true
	return s.db.Close()
}

// Fetch tries the primary namespace row, then the secondary, mirroring
// the remote fallback order.
func (s *LocalStore) Fetch(ctx context.Context, id string) (document.Document, Namespace, error) {
	for _, ns := range []Namespace{NamespacePrimary, NamespaceSecondary} {
		doc, err := s.load(ctx, ns, id)
		if err == nil {
			return doc, ns, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, ns, err
		}
	}
	return nil, NamespacePrimary, fmt.Errorf("local fetch %q: %w", id, ErrNotFound)
}

// Patch merges the mask-scoped update into the stored document. A
// missing document is created from the partial alone, matching the
// remote store's upsert-on-patch behavior.
func (s *LocalStore) Patch(ctx context.Context, id string, ns Namespace, update fieldmask.Update) error {
	doc, err := s.load(ctx, ns, id)
	if errors.Is(err, ErrNotFound) {
		doc = document.NewDocument()
	} else if err != nil {
		return err
	}

	if err := fieldmask.Apply(doc, update); err != nil {
		return fmt.Errorf("local patch %q: %w", id, err)
	}
	return s.save(ctx, ns, id, doc)
}

// Delete removes the document row; missing rows are a successful no-op.
func (s *LocalStore) Delete(ctx context.Context, id string, ns Namespace) error {
	if s.closed {
		return ErrLocalStoreClosed
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE namespace = ? AND doc_id = ?`, string(ns), id)
	if err != nil {
		return fmt.Errorf("local delete %q: %w", id, err)
	}
	return nil
}

// Create writes a complete document, replacing any existing row.
func (s *LocalStore) Create(ctx context.Context, id string, ns Namespace, doc document.Document) error {
	return s.save(ctx, ns, id, doc)
}

// List returns a summary row per document in the namespace.
func (s *LocalStore) List(ctx context.Context, ns Namespace) ([]Summary, error) {
	if s.closed {
		return nil, ErrLocalStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, body FROM documents WHERE namespace = ? ORDER BY doc_id`, string(ns))
	if err != nil {
		return nil, fmt.Errorf("local list %s: %w", ns, err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("local list %s: %w", ns, err)
		}

		doc, err := DecodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("local list %s: document %q: %w", ns, id, err)
		}

		name, _ := document.GetString(doc, document.ParsePath("meta.name"))
		rank, _ := document.GetString(doc, document.ParsePath("meta.rank"))
		summaries = append(summaries, Summary{ID: id, Name: name, Rank: rank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("local list %s: %w", ns, err)
	}
	return summaries, nil
}

func (s *LocalStore) load(ctx context.Context, ns Namespace, id string) (document.Document, error) {
	if s.closed {
		return nil, ErrLocalStoreClosed
	}

	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE namespace = ? AND doc_id = ?`,
		string(ns), id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("local load %q: %w", id, err)
	}

	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("local load %q: %w", id, err)
	}
	return doc, nil
}

func (s *LocalStore) save(ctx context.Context, ns Namespace, id string, doc document.Document) error {
	if s.closed {
		return ErrLocalStoreClosed
	}

	body, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("local save %q: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (namespace, doc_id, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, doc_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, string(ns), id, body, time.Now())
	if err != nil {
		return fmt.Errorf("local save %q: %w", id, err)
	}
	return nil
}
