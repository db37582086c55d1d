// Package service holds the business logic of the tracker. Services validate
// input, enforce limits and delegate persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/JobTracker/internal/models"
)

// MaxUsers is the number of accounts the system accepts.
const MaxUsers = 10

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLen = 72
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores user unless maxUsers accounts already exist.
	CreateUser(ctx context.Context, user models.User, maxUsers int) error
	// GetUserByUsername returns models.ErrNotFound for unknown names.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
}

// AuthService implements registration and credential checks by delegating
// to a UserRepository.
type AuthService struct {
	// repo performs the data-layer operations.
	repo UserRepository
	cost int
	now  func() time.Time
	// dummyHash is compared against when the username is unknown so that
	// failed lookups take as long as real comparisons.
	dummyHash []byte
}

// NewAuthService constructs a new AuthService using the provided repository.
// cost is the bcrypt work factor; values below bcrypt.MinCost use the default.
func NewAuthService(repo UserRepository, cost int) *AuthService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("jobtracker-dummy-password"), cost)
	return &AuthService{repo: repo, cost: cost, now: time.Now, dummyHash: dummy}
}

// Register creates a new account. Returns models.ErrDuplicateUser when the
// username is taken and models.ErrCapacityExceeded when the system is full.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user, MaxUsers); err != nil {
		return nil, err
	}
	return &user, nil
}

// Verify checks a username and password pair. Unknown users and wrong
// passwords both return models.ErrInvalidCredentials after one bcrypt
// comparison each.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, normalizeUsername(username))
	if errors.Is(err, models.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the user's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(oldPassword)); err != nil {
		return models.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateCredentials(username, password string) error {
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", models.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidInput, minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes", models.ErrInvalidInput, maxPasswordLen)
	}
	return nil
}
