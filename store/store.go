// Package store persists extracted content as a node/edge graph in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS content_node (
    node_id     TEXT PRIMARY KEY,
    node_text   TEXT,
    node_type   TEXT NOT NULL,
    url         TEXT,
    is_question INTEGER NOT NULL DEFAULT 0,
    seq_index   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS content_edge (
    node_id1  TEXT NOT NULL REFERENCES content_node(node_id),
    node_id2  TEXT NOT NULL REFERENCES content_node(node_id),
    edge_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_node_type ON content_node(node_type);
CREATE INDEX IF NOT EXISTS idx_content_edge_n1 ON content_edge(node_id1, edge_type);
CREATE INDEX IF NOT EXISTS idx_content_edge_n2 ON content_edge(node_id2, edge_type);
`

// Store is a content graph database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating as needed) the graph database at path, applying
// the production pragmas and the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for queries.
func (s *Store) DB() *sql.DB { return s.db }

// Node is one row of content_node.
type Node struct {
	ID         string
	Text       string
	Type       string
	URL        string
	IsQuestion bool
	SeqIndex   int
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertNode(tx execer, n Node) error {
	var text, url any
	if n.Text != "" {
		text = n.Text
	}
	if n.URL != "" {
		url = n.URL
	}
	_, err := tx.Exec(
		`INSERT INTO content_node (node_id, node_text, node_type, url, is_question, seq_index)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, text, n.Type, url, n.IsQuestion, n.SeqIndex)
	if err != nil {
		return fmt.Errorf("store: insert node %s: %w", n.ID, err)
	}
	return nil
}

func insertEdge(tx execer, id1, id2, edgeType string) error {
	_, err := tx.Exec(
		`INSERT INTO content_edge (node_id1, node_id2, edge_type) VALUES (?, ?, ?)`,
		id1, id2, edgeType)
	if err != nil {
		return fmt.Errorf("store: insert edge %s -%s-> %s: %w", id1, edgeType, id2, err)
	}
	return nil
}
