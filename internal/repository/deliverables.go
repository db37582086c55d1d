package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
)

// PostgresDeliverableRepository implements deliverable CRUD against a PostgreSQL database.
// Every operation checks that the parent application belongs to the caller.
type PostgresDeliverableRepository struct {
	DB *sql.DB
}

// NewPostgresDeliverableRepository creates a new PostgresDeliverableRepository.
func NewPostgresDeliverableRepository(db *sql.DB) *PostgresDeliverableRepository {
	return &PostgresDeliverableRepository{DB: db}
}

// ListDeliverables returns the deliverables of one application, soonest due first.
func (r *PostgresDeliverableRepository) ListDeliverables(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error) {
	owner, err := applicationOwner(ctx, r.DB, applicationID, false)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(owner, userID); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, application_id, description, kind, due_date, state, content, completed, created_at, updated_at
		FROM deliverables
		WHERE application_id = $1
		ORDER BY due_date ASC NULLS LAST, created_at ASC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("ListDeliverables: %w", err)
	}
	defer rows.Close()

	items := make([]models.Deliverable, 0)
	for rows.Next() {
		var d models.Deliverable
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.Description, &d.Kind, &d.DueDate, &d.State, &d.Content, &d.Completed, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// CreateDeliverable inserts d under its application after checking ownership.
func (r *PostgresDeliverableRepository) CreateDeliverable(ctx context.Context, userID string, d models.Deliverable) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		owner, err := applicationOwner(ctx, tx, d.ApplicationID, true)
		if err != nil {
			return err
		}
		if err := checkOwner(owner, userID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO deliverables (id, application_id, description, kind, due_date, state, content, completed, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, d.ID, d.ApplicationID, d.Description, d.Kind, d.DueDate, d.State, d.Content, d.Completed, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert deliverable: %w", err)
		}
		return touchApplication(ctx, tx, d.ApplicationID, d.UpdatedAt)
	})
}

// lockDeliverable loads a deliverable together with its application's owner,
// locking the deliverable row.
func lockDeliverable(ctx context.Context, tx *sql.Tx, userID, id string) (*models.Deliverable, error) {
	var (
		d     models.Deliverable
		owner string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT d.id, d.application_id, d.description, d.kind, d.due_date, d.state, d.content, d.completed, d.created_at, d.updated_at, a.user_id
		FROM deliverables d
		JOIN applications a ON a.id = d.application_id
		WHERE d.id = $1
		FOR UPDATE OF d
	`, id).Scan(&d.ID, &d.ApplicationID, &d.Description, &d.Kind, &d.DueDate, &d.State, &d.Content, &d.Completed, &d.CreatedAt, &d.UpdatedAt, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deliverable %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get deliverable: %w", err)
	}
	if err := checkOwner(owner, userID); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDeliverable locks the deliverable, applies the mutation and stores it.
func (r *PostgresDeliverableRepository) UpdateDeliverable(
	ctx context.Context,
	userID, id string,
	apply func(*models.Deliverable) error,
) (*models.Deliverable, error) {
	var updated *models.Deliverable
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		d, err := lockDeliverable(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(d); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE deliverables SET
				description = $2,
				kind = $3,
				due_date = $4,
				state = $5,
				content = $6,
				completed = $7,
				updated_at = $8
			WHERE id = $1
		`, d.ID, d.Description, d.Kind, d.DueDate, d.State, d.Content, d.Completed, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update deliverable: %w", err)
		}
		if err := touchApplication(ctx, tx, d.ApplicationID, d.UpdatedAt); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDeliverable removes one deliverable.
func (r *PostgresDeliverableRepository) DeleteDeliverable(ctx context.Context, userID, id string, at time.Time) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		d, err := lockDeliverable(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deliverables WHERE id = $1`, d.ID); err != nil {
			return fmt.Errorf("delete deliverable: %w", err)
		}
		return touchApplication(ctx, tx, d.ApplicationID, at)
	})
}
