//go:build sqlite_fts5

package repo

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS drafts_fts USING fts5(
			id UNINDEXED,
			title,
			plain,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, plain string) error {
	_, _ = tx.Exec(`DELETE FROM drafts_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO drafts_fts (id, title, plain) VALUES (?, ?, ?)`, id, title, plain)
	if err != nil {
		return fmt.Errorf("repo: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM drafts_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search and returns matching drafts with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	match := matchQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.title,
		       snippet(drafts_fts, 2, '<b>', '</b>', '...', 32),
		       d.status
		FROM drafts_fts f
		JOIN drafts d ON d.id = f.id
		WHERE drafts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// matchQuery turns free text into an FTS5 expression where every word is a
// quoted string, so operators and punctuation in user input stay literal.
// Words are implicitly ANDed.
func matchQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}
