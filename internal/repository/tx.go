// Package repository provides PostgreSQL persistence for users, applications,
// deliverables and writing notes.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// applicationOwner returns the owner of an application. When lock is set the
// application row is locked for the rest of the transaction.
func applicationOwner(ctx context.Context, q querier, applicationID string, lock bool) (string, error) {
	query := `SELECT user_id FROM applications WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var owner string
	err := q.QueryRowContext(ctx, query, applicationID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("application %s: %w", applicationID, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("application owner: %w", err)
	}
	return owner, nil
}

// checkOwner maps an ownership mismatch to ErrForbidden.
func checkOwner(owner, userID string) error {
	if owner != userID {
		return models.ErrForbidden
	}
	return nil
}

// touchApplication bumps the parent application's updated_at after a child
// record changed.
func touchApplication(ctx context.Context, q querier, applicationID string, at time.Time) error {
	if _, err := q.ExecContext(ctx, `UPDATE applications SET updated_at = $2 WHERE id = $1`, applicationID, at); err != nil {
		return fmt.Errorf("touch application: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
