package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/JobTracker/internal/models"
)

// userCapLock is the advisory lock key serializing sign-ups so that the
// user count cannot be exceeded by concurrent registrations.
const userCapLock = 7_100_001

// PostgresUserRepository implements credential persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts user unless maxUsers accounts already exist.
// The count and the insert run in one transaction behind an advisory lock.
// Returns models.ErrCapacityExceeded or models.ErrDuplicateUser on conflict.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user models.User, maxUsers int) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, userCapLock); err != nil {
			return fmt.Errorf("lock users: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count >= maxUsers {
			return models.ErrCapacityExceeded
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
			user.ID, user.Username, user.PasswordHash, user.CreatedAt,
		)
		if isUniqueViolation(err) {
			return models.ErrDuplicateUser
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

// GetUserByUsername fetches a user by login name.
// Returns models.ErrNotFound when no such user exists.
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username)
}

// GetUserByID fetches a user by id.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdatePasswordHash replaces the stored hash for the user.
func (r *PostgresUserRepository) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
