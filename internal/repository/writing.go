package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/JobTracker/internal/models"
)

// PostgresWritingRepository implements writing note CRUD against a PostgreSQL database.
type PostgresWritingRepository struct {
	DB *sql.DB
}

// NewPostgresWritingRepository creates a new PostgresWritingRepository.
func NewPostgresWritingRepository(db *sql.DB) *PostgresWritingRepository {
	return &PostgresWritingRepository{DB: db}
}

// ListWritingNotes returns the notes of one application, most recently edited
// first, optionally narrowed by a free-text query over title, tags and content.
func (r *PostgresWritingRepository) ListWritingNotes(ctx context.Context, userID string, filter models.WritingFilter) ([]models.WritingNote, error) {
	owner, err := applicationOwner(ctx, r.DB, filter.ApplicationID, false)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(owner, userID); err != nil {
		return nil, err
	}

	var (
		where = []string{"application_id = $1"}
		args  = []any{filter.ApplicationID}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR array_to_string(tags, ',') ILIKE $%d OR content ILIKE $%d)", n, n, n))
	}

	query := `SELECT id, application_id, title, tags, content, created_at, updated_at FROM writing_notes WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListWritingNotes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.WritingNote, 0)
	for rows.Next() {
		var n models.WritingNote
		if err := rows.Scan(&n.ID, &n.ApplicationID, &n.Title, pq.Array(&n.Tags), &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateWritingNote inserts n under its application after checking ownership.
func (r *PostgresWritingRepository) CreateWritingNote(ctx context.Context, userID string, n models.WritingNote) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		owner, err := applicationOwner(ctx, tx, n.ApplicationID, true)
		if err != nil {
			return err
		}
		if err := checkOwner(owner, userID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO writing_notes (id, application_id, title, tags, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, n.ID, n.ApplicationID, n.Title, pq.Array(n.Tags), n.Content, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert writing note: %w", err)
		}
		return touchApplication(ctx, tx, n.ApplicationID, n.UpdatedAt)
	})
}

func lockWritingNote(ctx context.Context, tx *sql.Tx, userID, id string) (*models.WritingNote, error) {
	var (
		n     models.WritingNote
		owner string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT w.id, w.application_id, w.title, w.tags, w.content, w.created_at, w.updated_at, a.user_id
		FROM writing_notes w
		JOIN applications a ON a.id = w.application_id
		WHERE w.id = $1
		FOR UPDATE OF w
	`, id).Scan(&n.ID, &n.ApplicationID, &n.Title, pq.Array(&n.Tags), &n.Content, &n.CreatedAt, &n.UpdatedAt, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("writing note %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get writing note: %w", err)
	}
	if err := checkOwner(owner, userID); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateWritingNote locks the note, applies the mutation and stores it.
func (r *PostgresWritingRepository) UpdateWritingNote(
	ctx context.Context,
	userID, id string,
	apply func(*models.WritingNote) error,
) (*models.WritingNote, error) {
	var updated *models.WritingNote
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		n, err := lockWritingNote(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(n); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE writing_notes SET title = $2, tags = $3, content = $4, updated_at = $5 WHERE id = $1`,
			n.ID, n.Title, pq.Array(n.Tags), n.Content, n.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update writing note: %w", err)
		}
		if err := touchApplication(ctx, tx, n.ApplicationID, n.UpdatedAt); err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteWritingNote removes one writing note.
func (r *PostgresWritingRepository) DeleteWritingNote(ctx context.Context, userID, id string, at time.Time) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		n, err := lockWritingNote(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM writing_notes WHERE id = $1`, n.ID); err != nil {
			return fmt.Errorf("delete writing note: %w", err)
		}
		return touchApplication(ctx, tx, n.ApplicationID, at)
	})
}
