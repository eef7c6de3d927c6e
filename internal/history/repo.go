package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/checksum"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

// Store defines the history operations. Consumers should depend on this
// interface rather than the concrete *DB type.
type Store interface {
	Push(ctx context.Context, cfg *models.Configuration, label string) error
	Undo(ctx context.Context) (*models.Configuration, error)
	Redo(ctx context.Context) (*models.Configuration, error)
	Current(ctx context.Context) (*Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

var _ Store = (*DB)(nil)

// Entry describes one snapshot without its body.
type Entry struct {
	Seq       int64     `json:"seq"`
	Label     string    `json:"label"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"createdAt"`
	Current   bool      `json:"current"`
}

// Push records cfg as the newest snapshot. Snapshots after the cursor (the
// redo branch) are discarded and the oldest are trimmed beyond the limit.
func (db *DB) Push(ctx context.Context, cfg *models.Configuration, label string) error {
	body, sum, err := checksum.JSON(cfg)
	if err != nil {
		return fmt.Errorf("history: encode snapshot: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	cur, err := cursorTx(ctx, tx)
	if err != nil {
		return err
	}
	if cur > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE seq > ?`, cur); err != nil {
			return fmt.Errorf("history: drop redo branch: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (label, checksum, body, created_at) VALUES (?, ?, ?, ?)`,
		label, sum, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("history: insert snapshot: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("history: last insert id: %w", err)
	}
	if err := setCursorTx(ctx, tx, seq); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE seq NOT IN (
			SELECT seq FROM snapshots ORDER BY seq DESC LIMIT ?
		)`, db.limit)
	if err != nil {
		return fmt.Errorf("history: trim: %w", err)
	}
	return tx.Commit()
}

// Undo moves the cursor one snapshot back and returns that snapshot.
func (db *DB) Undo(ctx context.Context) (*models.Configuration, error) {
	return db.move(ctx, `SELECT seq, body FROM snapshots WHERE seq < ? ORDER BY seq DESC LIMIT 1`, apperr.ErrNothingToUndo)
}

// Redo moves the cursor one snapshot forward and returns that snapshot.
func (db *DB) Redo(ctx context.Context) (*models.Configuration, error) {
	return db.move(ctx, `SELECT seq, body FROM snapshots WHERE seq > ? ORDER BY seq ASC LIMIT 1`, apperr.ErrNothingToRedo)
}

func (db *DB) move(ctx context.Context, query string, atEnd error) (*models.Configuration, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	cur, err := cursorTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cur == 0 {
		return nil, atEnd
	}
	var (
		seq  int64
		body string
	)
	err = tx.QueryRowContext(ctx, query, cur).Scan(&seq, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, atEnd
	}
	if err != nil {
		return nil, fmt.Errorf("history: read snapshot: %w", err)
	}
	cfg, err := site.Decode([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("history: decode snapshot %d: %w", seq, err)
	}
	if err := setCursorTx(ctx, tx, seq); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("history: commit: %w", err)
	}
	return cfg, nil
}

// Current returns the entry at the cursor, or apperr.ErrNotFound when the
// history is empty.
func (db *DB) Current(ctx context.Context) (*Entry, error) {
	var e Entry
	err := db.conn.QueryRowContext(ctx, `
		SELECT s.seq, s.label, s.checksum, s.created_at
		FROM snapshots s JOIN cursor c ON c.seq = s.seq
		WHERE c.id = 1`).Scan(&e.Seq, &e.Label, &e.Checksum, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: current: %w", err)
	}
	e.Current = true
	return &e, nil
}

// List returns up to limit entries, newest first.
func (db *DB) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = db.limit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.seq, s.label, s.checksum, s.created_at,
		       COALESCE((SELECT c.seq FROM cursor c WHERE c.id = 1), 0) = s.seq
		FROM snapshots s
		ORDER BY s.seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Label, &e.Checksum, &e.CreatedAt, &e.Current); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func cursorTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `SELECT seq FROM cursor WHERE id = 1`).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("history: read cursor: %w", err)
	}
	return seq, nil
}

func setCursorTx(ctx context.Context, tx *sql.Tx, seq int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO cursor (id, seq) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET seq = excluded.seq`, seq)
	if err != nil {
		return fmt.Errorf("history: write cursor: %w", err)
	}
	return nil
}
