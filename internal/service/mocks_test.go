package service

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
)

type mockUserRepo struct {
	CreateUserFunc         func(ctx context.Context, user models.User, maxUsers int) error
	GetUserByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	GetUserByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, id string, hash []byte) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user models.User, maxUsers int) error {
	return m.CreateUserFunc(ctx, user, maxUsers)
}
func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetUserByUsernameFunc(ctx, username)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}
func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	return m.UpdatePasswordHashFunc(ctx, id, hash)
}

// memUserRepo is an in-memory UserRepository enforcing the same limits as
// the Postgres implementation.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]models.User)}
}

func (m *memUserRepo) CreateUser(_ context.Context, user models.User, maxUsers int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.users) >= maxUsers {
		return models.ErrCapacityExceeded
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.ErrDuplicateUser
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *memUserRepo) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

type mockAppRepo struct {
	CountApplicationsFunc    func(ctx context.Context, userID string) (int, error)
	ListApplicationsFunc     func(ctx context.Context, userID string, filter models.ApplicationFilter) ([]models.Application, error)
	GetApplicationFunc       func(ctx context.Context, userID, id string) (*models.Application, error)
	CreateApplicationFunc    func(ctx context.Context, app models.Application, limit int) error
	UpdateApplicationFunc    func(ctx context.Context, userID, id string, apply func(*models.Application) error) (*models.Application, error)
	DeleteApplicationFunc    func(ctx context.Context, userID, id string) error
	ListApplicationStatsFunc func(ctx context.Context, userID string) ([]models.ApplicationStat, error)
}

func (m *mockAppRepo) CountApplications(ctx context.Context, userID string) (int, error) {
	return m.CountApplicationsFunc(ctx, userID)
}
func (m *mockAppRepo) ListApplications(ctx context.Context, userID string, filter models.ApplicationFilter) ([]models.Application, error) {
	return m.ListApplicationsFunc(ctx, userID, filter)
}
func (m *mockAppRepo) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	return m.GetApplicationFunc(ctx, userID, id)
}
func (m *mockAppRepo) CreateApplication(ctx context.Context, app models.Application, limit int) error {
	return m.CreateApplicationFunc(ctx, app, limit)
}
func (m *mockAppRepo) UpdateApplication(ctx context.Context, userID, id string, apply func(*models.Application) error) (*models.Application, error) {
	return m.UpdateApplicationFunc(ctx, userID, id, apply)
}
func (m *mockAppRepo) DeleteApplication(ctx context.Context, userID, id string) error {
	return m.DeleteApplicationFunc(ctx, userID, id)
}
func (m *mockAppRepo) ListApplicationStats(ctx context.Context, userID string) ([]models.ApplicationStat, error) {
	return m.ListApplicationStatsFunc(ctx, userID)
}

type mockDeliverableRepo struct {
	ListDeliverablesFunc  func(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error)
	CreateDeliverableFunc func(ctx context.Context, userID string, d models.Deliverable) error
	UpdateDeliverableFunc func(ctx context.Context, userID, id string, apply func(*models.Deliverable) error) (*models.Deliverable, error)
	DeleteDeliverableFunc func(ctx context.Context, userID, id string, at time.Time) error
}

func (m *mockDeliverableRepo) ListDeliverables(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error) {
	return m.ListDeliverablesFunc(ctx, userID, applicationID)
}
func (m *mockDeliverableRepo) CreateDeliverable(ctx context.Context, userID string, d models.Deliverable) error {
	return m.CreateDeliverableFunc(ctx, userID, d)
}
func (m *mockDeliverableRepo) UpdateDeliverable(ctx context.Context, userID, id string, apply func(*models.Deliverable) error) (*models.Deliverable, error) {
	return m.UpdateDeliverableFunc(ctx, userID, id, apply)
}
func (m *mockDeliverableRepo) DeleteDeliverable(ctx context.Context, userID, id string, at time.Time) error {
	return m.DeleteDeliverableFunc(ctx, userID, id, at)
}

type mockWritingRepo struct {
	ListWritingNotesFunc  func(ctx context.Context, userID string, filter models.WritingFilter) ([]models.WritingNote, error)
	CreateWritingNoteFunc func(ctx context.Context, userID string, n models.WritingNote) error
	UpdateWritingNoteFunc func(ctx context.Context, userID, id string, apply func(*models.WritingNote) error) (*models.WritingNote, error)
	DeleteWritingNoteFunc func(ctx context.Context, userID, id string, at time.Time) error
}

func (m *mockWritingRepo) ListWritingNotes(ctx context.Context, userID string, filter models.WritingFilter) ([]models.WritingNote, error) {
	return m.ListWritingNotesFunc(ctx, userID, filter)
}
func (m *mockWritingRepo) CreateWritingNote(ctx context.Context, userID string, n models.WritingNote) error {
	return m.CreateWritingNoteFunc(ctx, userID, n)
}
func (m *mockWritingRepo) UpdateWritingNote(ctx context.Context, userID, id string, apply func(*models.WritingNote) error) (*models.WritingNote, error) {
	return m.UpdateWritingNoteFunc(ctx, userID, id, apply)
}
func (m *mockWritingRepo) DeleteWritingNote(ctx context.Context, userID, id string, at time.Time) error {
	return m.DeleteWritingNoteFunc(ctx, userID, id, at)
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.GenerateFunc(ctx, prompt)
}

type staticSecret struct {
	mu  sync.Mutex
	key []byte
}

func (s *staticSecret) Current() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *staticSecret) set(key string) {
	s.mu.Lock()
	s.key = []byte(key)
	s.mu.Unlock()
}
