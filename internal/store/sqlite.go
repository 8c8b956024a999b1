package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/journal/internal/domain"
)

//go:embed schema.sql
var schema string

// Index is a disposable SQLite copy of the reflections file used for search.
// The JSON file stays the source of truth; Rebuild replaces the whole index.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the index database at path
func OpenIndex(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection
func (x *Index) Close() error {
	return x.db.Close()
}

// Rebuild replaces the index contents with records, keeping their order
func (x *Index) Rebuild(records []json.RawMessage) (int, error) {
	tx, err := x.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (position, id, title, content, category, learnings, formatted_date, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, raw := range records {
		e := domain.DecodeEntry(raw)

		var id interface{}
		if rid, ok := domain.RecordID(raw); ok {
			id = rid
		}

		_, err := stmt.Exec(i, id, e.Title, e.Content, e.Category,
			strings.Join(e.Learnings, "\n"), e.FormattedDate, string(raw))
		if err != nil {
			return 0, fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rebuild: %w", err)
	}
	return len(records), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a simple text search over title, content, category and learnings.
// The query is matched literally; % and _ are not wildcards.
func (x *Index) Search(query string) ([]domain.Entry, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := x.db.Query(`
		SELECT raw FROM entries
		WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
			OR category LIKE ? ESCAPE '\' OR learnings LIKE ? ESCAPE '\'
		ORDER BY position
	`, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, domain.DecodeEntry(json.RawMessage(raw)))
	}

	return entries, rows.Err()
}

// Count returns the number of indexed entries
func (x *Index) Count() (int, error) {
	var n int
	if err := x.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
