package ingest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ItemStore persists harvested items to SQLite. It is an optional downstream
// collaborator: the pipeline runs fine without it, and nothing in the run
// reads from it.
type ItemStore struct {
	db *sql.DB
}

// OpenStore opens (or creates) the item database at dbPath.
func OpenStore(dbPath string) (*ItemStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &ItemStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ItemStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			external_id TEXT NOT NULL,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			url         TEXT NOT NULL,
			summary     TEXT NOT NULL DEFAULT '',
			body        TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '',
			published   DATETIME,
			fetched_at  DATETIME NOT NULL,
			PRIMARY KEY (source, external_id)
		);
		CREATE INDEX IF NOT EXISTS idx_items_published ON items(published DESC);
		CREATE INDEX IF NOT EXISTS idx_items_source ON items(source);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *ItemStore) Close() error {
	return s.db.Close()
}

// UpsertItems inserts or refreshes a batch of items in one transaction.
func (s *ItemStore) UpsertItems(items []Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO items (external_id, source, title, url, summary, body, tags, published, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, external_id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			body = excluded.body,
			tags = excluded.tags,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, it := range items {
		var published any
		if it.Published != nil {
			published = it.Published.UTC()
		}
		_, err := stmt.Exec(it.ExternalID, it.SourceName, it.Title, it.URL,
			it.Summary, it.Body, strings.Join(it.Tags, ","), published, now)
		if err != nil {
			return fmt.Errorf("upserting item %s: %w", it.ExternalID, err)
		}
	}
	return tx.Commit()
}

// Recent returns items published at or after since, newest first. Undated
// items are excluded.
func (s *ItemStore) Recent(since time.Time) ([]Item, error) {
	rows, err := s.db.Query(`
		SELECT external_id, source, title, url, summary, body, tags, published
		FROM items
		WHERE published IS NOT NULL AND published >= ?
		ORDER BY published DESC
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var tags string
		var published time.Time
		if err := rows.Scan(&it.ExternalID, &it.SourceName, &it.Title, &it.URL,
			&it.Summary, &it.Body, &tags, &published); err != nil {
			return nil, err
		}
		published = published.UTC()
		it.Published = &published
		if tags != "" {
			it.Tags = strings.Split(tags, ",")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
