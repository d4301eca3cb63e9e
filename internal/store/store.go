// Package store implements the article deduplication store: a durable
// set-membership test plus append-only insertion, keyed by the article
// link. It is backed by a single-file SQLite database so state survives
// across scheduled invocations without an external database.
package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"arsdigest/internal/types"
)

// schema is the one persisted table. The UNIQUE constraint on link is
// the correctness backstop for deduplication: even if the check-then-
// insert were ever raced, the database refuses a duplicate row.
const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT,
	link TEXT UNIQUE NOT NULL,
	published TEXT,
	summary TEXT
)`

// Store is the SQLite-backed article store. Records are created exactly
// once per distinct link, never updated, never deleted. The only read
// path exposed to the rest of the system is membership via RecordIfNew.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store file at path and ensures the schema
// exists. It is idempotent and safe to call every run. An unwritable
// path or a corrupt file yields a storage_unavailable error.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeStorageUnavailable,
			"failed to open article store",
			err,
		)
	}

	// sql.Open is lazy; ping to surface path problems now.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, types.NewAppError(
			types.ErrCodeStorageUnavailable,
			"article store is not reachable",
			err,
		)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, types.NewAppError(
			types.ErrCodeStorageUnavailable,
			"failed to initialize article store schema",
			err,
		)
	}

	return &Store{db: db}, nil
}

// RecordIfNew durably persists the article and returns true if no
// existing record shares its link; it returns false and writes nothing
// otherwise. The insert and the membership check are a single statement
// so two articles with the same link within one run cannot both be
// accepted. The write is committed before the call returns.
func (s *Store) RecordIfNew(ctx context.Context, article types.Article) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (title, link, published, summary)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(link) DO NOTHING`,
		article.Title, article.Link, article.Published, article.Summary,
	)
	if err != nil {
		return false, types.NewAppError(
			types.ErrCodeStorageUnavailable,
			"failed to record article",
			err,
		)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, types.NewAppError(
			types.ErrCodeStorageUnavailable,
			"failed to read insert result",
			err,
		)
	}

	return inserted > 0, nil
}

// FilterNew records each article and returns, in input order, the ones
// that were not previously seen. Within a run the first occurrence of a
// link wins; later duplicates are dropped.
func (s *Store) FilterNew(ctx context.Context, articles []types.Article) ([]types.Article, error) {
	var fresh []types.Article
	for _, article := range articles {
		isNew, err := s.RecordIfNew(ctx, article)
		if err != nil {
			return nil, err
		}
		if isNew {
			fresh = append(fresh, article)
		}
	}
	return fresh, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
