package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/postcraft/internal/apperr"
	"github.com/starford/postcraft/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Status  string `json:"status"`
}

const draftColumns = `id, title, content, status, scheduled_at, published_at, checksum, created_at, updated_at`

// Insert stores a new draft and its search text within a transaction.
func (db *DB) Insert(d models.Draft, plain string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("repo: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO drafts (`+draftColumns+`, plain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Title, nullString(d.Content), d.Status, unixOrNil(d.ScheduledAt), unixOrNil(d.PublishedAt),
		d.Checksum, d.CreatedAt.UTC(), d.UpdatedAt.UTC(), plain)
	if err != nil {
		var sqErr sqlite3.Error
		if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("repo: insert draft: %w", err)
	}

	if err := ftsUpsert(tx, d.ID, d.Title, plain); err != nil {
		return err
	}
	return tx.Commit()
}

// Version identifies the row state a write was computed from.
type Version struct {
	Status   string
	Checksum string
}

// VersionOf returns the version of a draft as it was read.
func VersionOf(d models.Draft) Version {
	return Version{Status: d.Status, Checksum: d.Checksum}
}

// Update replaces every mutable column of an existing draft, provided the
// row still matches from. A row that moved on in the meantime yields
// ErrConflict, or ErrInvalidState when it is being or has been published.
func (db *DB) Update(d models.Draft, plain string, from Version) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("repo: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		UPDATE drafts SET
			title        = ?,
			content      = ?,
			plain        = ?,
			status       = ?,
			scheduled_at = ?,
			published_at = ?,
			checksum     = ?,
			updated_at   = ?
		WHERE id = ? AND status = ? AND checksum = ?
	`, d.Title, nullString(d.Content), plain, d.Status, unixOrNil(d.ScheduledAt), unixOrNil(d.PublishedAt),
		d.Checksum, d.UpdatedAt.UTC(), d.ID, from.Status, from.Checksum)
	if err != nil {
		return fmt.Errorf("repo: update draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.missed(d.ID)
	}

	if err := ftsUpsert(tx, d.ID, d.Title, plain); err != nil {
		return err
	}
	return tx.Commit()
}

// Claim moves a draft into the publishing state so that exactly one caller
// delivers it. It fails like Update when the row no longer matches from.
func (db *DB) Claim(id string, from Version) error {
	res, err := db.conn.Exec(`
		UPDATE drafts SET status = ?
		WHERE id = ? AND status = ? AND checksum = ? AND status NOT IN (?, ?)
	`, models.StatusPublishing, id, from.Status, from.Checksum, models.StatusPublishing, models.StatusPublished)
	if err != nil {
		return fmt.Errorf("repo: claim draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.missed(id)
	}
	return nil
}

// Release hands a claimed draft back in the given status after a failed
// delivery.
func (db *DB) Release(id, status string) error {
	res, err := db.conn.Exec(`UPDATE drafts SET status = ? WHERE id = ? AND status = ?`,
		status, id, models.StatusPublishing)
	if err != nil {
		return fmt.Errorf("repo: release draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.missed(id)
	}
	return nil
}

// ReleaseStaleClaims returns drafts left in the publishing state by an
// interrupted process to scheduled or draft, depending on whether they
// carry a scheduled time. It must run before anything else claims drafts.
func (db *DB) ReleaseStaleClaims() (int64, error) {
	res, err := db.conn.Exec(`
		UPDATE drafts
		SET status = CASE WHEN scheduled_at IS NULL THEN ? ELSE ? END
		WHERE status = ?
	`, models.StatusDraft, models.StatusScheduled, models.StatusPublishing)
	if err != nil {
		return 0, fmt.Errorf("repo: release stale claims: %w", err)
	}
	return res.RowsAffected()
}

// MarkPublished completes a claim. Only a draft in the publishing state
// can be marked.
func (db *DB) MarkPublished(id string, at time.Time) error {
	res, err := db.conn.Exec(`
		UPDATE drafts SET
			status       = ?,
			published_at = ?,
			scheduled_at = NULL,
			updated_at   = ?
		WHERE id = ? AND status = ?
	`, models.StatusPublished, at.Unix(), at.UTC(), id, models.StatusPublishing)
	if err != nil {
		return fmt.Errorf("repo: mark published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := db.missed(id); !errors.Is(err, apperr.ErrConflict) {
			return err
		}
		return fmt.Errorf("%w: draft was not claimed", apperr.ErrInvalidState)
	}
	return nil
}

// missed explains why a conditional write on id touched no row.
func (db *DB) missed(id string) error {
	cur, err := db.Get(id)
	if err != nil {
		return err
	}
	switch cur.Status {
	case models.StatusPublished:
		return fmt.Errorf("%w: draft already published", apperr.ErrInvalidState)
	case models.StatusPublishing:
		return fmt.Errorf("%w: draft is being published", apperr.ErrInvalidState)
	}
	return apperr.ErrConflict
}

// Get returns a single draft by ID.
func (db *DB) Get(id string) (*models.Draft, error) {
	row := db.conn.QueryRow(`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo: get draft: %w", err)
	}
	return d, nil
}

// Delete removes a draft and its FTS entry.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("repo: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	res, err := tx.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repo: delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

// List returns drafts newest first, optionally filtered by status,
// together with the total number of matching drafts.
func (db *DB) List(limit, offset int, status string) ([]models.Draft, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(
		`SELECT count(*) FROM drafts WHERE (? = '' OR status = ?)`, status, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo: count drafts: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT `+draftColumns+`
		FROM drafts
		WHERE (? = '' OR status = ?)
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?
	`, status, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repo: list drafts: %w", err)
	}
	defer rows.Close()

	out, err := scanDrafts(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Due returns scheduled drafts whose scheduled time is at or before now,
// oldest first.
func (db *DB) Due(now time.Time) ([]models.Draft, error) {
	rows, err := db.conn.Query(`
		SELECT `+draftColumns+`
		FROM drafts
		WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		ORDER BY scheduled_at, id
	`, models.StatusScheduled, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("repo: due drafts: %w", err)
	}
	defer rows.Close()
	return scanDrafts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(s rowScanner) (*models.Draft, error) {
	var (
		d         models.Draft
		content   sql.NullString
		scheduled sql.NullInt64
		published sql.NullInt64
	)
	if err := s.Scan(&d.ID, &d.Title, &content, &d.Status, &scheduled, &published,
		&d.Checksum, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Content = content.String
	d.ScheduledAt = fromUnix(scheduled)
	d.PublishedAt = fromUnix(published)
	return &d, nil
}

func scanDrafts(rows *sql.Rows) ([]models.Draft, error) {
	var out []models.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan draft: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	}
	return limit
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.Status); err != nil {
			return nil, fmt.Errorf("repo: scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func unixOrNil(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
