package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/JobTracker/internal/models"
)

const applicationColumns = `id, user_id, company, role, link, status, due_date, submitted_date, notes, created_at, updated_at`

// PostgresApplicationRepository implements application CRUD against a PostgreSQL database.
type PostgresApplicationRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresApplicationRepository creates a new PostgresApplicationRepository using the provided *sql.DB.
func NewPostgresApplicationRepository(db *sql.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Role, &a.Link, &a.Status,
		&a.DueDate, &a.SubmittedDate, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountApplications returns how many applications the user owns.
func (r *PostgresApplicationRepository) CountApplications(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

// ListApplications returns the user's applications, newest first.
//
//	ctx:    context for cancellation and deadlines
//	userID: identifier of the owner
//	filter: optional status and free-text narrowing
func (r *PostgresApplicationRepository) ListApplications(ctx context.Context, userID string, filter models.ApplicationFilter) ([]models.Application, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(company ILIKE $%d OR role ILIKE $%d OR notes ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListApplications: %w", err)
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// GetApplication fetches one application, enforcing ownership.
// Returns models.ErrNotFound when it does not exist and models.ErrForbidden
// when it belongs to another user.
func (r *PostgresApplicationRepository) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	return getApplication(ctx, r.DB, userID, id, false)
}

func getApplication(ctx context.Context, q querier, userID, id string, lock bool) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	a, err := scanApplication(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if err := checkOwner(a.UserID, userID); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateApplication inserts app unless its owner already has limit applications.
// The owner's user row is locked so concurrent creates for the same user
// serialize on the count.
func (r *PostgresApplicationRepository) CreateApplication(ctx context.Context, app models.Application, limit int) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, app.UserID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", app.UserID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1`, app.UserID).Scan(&count); err != nil {
			return fmt.Errorf("count applications: %w", err)
		}
		if count >= limit {
			return models.ErrQuotaExceeded
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications (`+applicationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, app.ID, app.UserID, app.Company, app.Role, app.Link, app.Status,
			app.DueDate, app.SubmittedDate, app.Notes, app.CreatedAt, app.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		return nil
	})
}

// UpdateApplication locks the application, lets apply mutate it and writes
// the result back, all in one transaction. An error from apply aborts the
// update without writing.
func (r *PostgresApplicationRepository) UpdateApplication(
	ctx context.Context,
	userID, id string,
	apply func(*models.Application) error,
) (*models.Application, error) {
	var updated *models.Application
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		a, err := getApplication(ctx, tx, userID, id, true)
		if err != nil {
			return err
		}
		if err := apply(a); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE applications SET
				company = $2,
				role = $3,
				link = $4,
				status = $5,
				due_date = $6,
				submitted_date = $7,
				notes = $8,
				updated_at = $9
			WHERE id = $1
		`, a.ID, a.Company, a.Role, a.Link, a.Status, a.DueDate, a.SubmittedDate, a.Notes, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteApplication removes an application. Deliverables and writing notes
// go with it through ON DELETE CASCADE in the same statement.
func (r *PostgresApplicationRepository) DeleteApplication(ctx context.Context, userID, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		owner, err := applicationOwner(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := checkOwner(owner, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		return nil
	})
}

// ListApplicationStats returns the status and creation time of every
// application the user owns.
func (r *PostgresApplicationRepository) ListApplicationStats(ctx context.Context, userID string) ([]models.ApplicationStat, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, created_at FROM applications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListApplicationStats: %w", err)
	}
	defer rows.Close()

	var stats []models.ApplicationStat
	for rows.Next() {
		var s models.ApplicationStat
		if err := rows.Scan(&s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
