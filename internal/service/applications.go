package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/JobTracker/internal/models"
)

// MaxApplications is the number of applications one user may own.
const MaxApplications = 5

// ApplicationRepository defines the persistence operations over applications.
type ApplicationRepository interface {
	CountApplications(ctx context.Context, userID string) (int, error)
	ListApplications(ctx context.Context, userID string, filter models.ApplicationFilter) ([]models.Application, error)
	GetApplication(ctx context.Context, userID, id string) (*models.Application, error)
	// CreateApplication stores app unless its owner already has limit applications.
	CreateApplication(ctx context.Context, app models.Application, limit int) error
	UpdateApplication(ctx context.Context, userID, id string, apply func(*models.Application) error) (*models.Application, error)
	DeleteApplication(ctx context.Context, userID, id string) error
	ListApplicationStats(ctx context.Context, userID string) ([]models.ApplicationStat, error)
}

// DeliverableRepository defines the persistence operations over deliverables.
type DeliverableRepository interface {
	ListDeliverables(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error)
	CreateDeliverable(ctx context.Context, userID string, d models.Deliverable) error
	UpdateDeliverable(ctx context.Context, userID, id string, apply func(*models.Deliverable) error) (*models.Deliverable, error)
	DeleteDeliverable(ctx context.Context, userID, id string, at time.Time) error
}

// WritingRepository defines the persistence operations over writing notes.
type WritingRepository interface {
	ListWritingNotes(ctx context.Context, userID string, filter models.WritingFilter) ([]models.WritingNote, error)
	CreateWritingNote(ctx context.Context, userID string, n models.WritingNote) error
	UpdateWritingNote(ctx context.Context, userID, id string, apply func(*models.WritingNote) error) (*models.WritingNote, error)
	DeleteWritingNote(ctx context.Context, userID, id string, at time.Time) error
}

// ApplicationService manages applications and the records attached to them.
// Every method is scoped to the calling user.
type ApplicationService struct {
	apps         ApplicationRepository
	deliverables DeliverableRepository
	writing      WritingRepository
	now          func() time.Time
}

// NewApplicationService wires the three repositories into one service.
func NewApplicationService(apps ApplicationRepository, deliverables DeliverableRepository, writing WritingRepository) *ApplicationService {
	return &ApplicationService{
		apps:         apps,
		deliverables: deliverables,
		writing:      writing,
		now:          time.Now,
	}
}

func (s *ApplicationService) timestamp() time.Time {
	return s.now().UTC()
}

// Meta reports how many applications the user has against the limit.
func (s *ApplicationService) Meta(ctx context.Context, userID string) (models.Meta, error) {
	count, err := s.apps.CountApplications(ctx, userID)
	if err != nil {
		return models.Meta{}, err
	}
	return models.Meta{
		Count:    count,
		Limit:    MaxApplications,
		MaxUsers: MaxUsers,
		Statuses: models.Statuses,
	}, nil
}

// List returns the user's applications, newest first. status and query are
// optional.
func (s *ApplicationService) List(ctx context.Context, userID, status, query string) ([]models.Application, error) {
	filter := models.ApplicationFilter{Query: strings.TrimSpace(query)}
	if strings.TrimSpace(status) != "" {
		st, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	return s.apps.ListApplications(ctx, userID, filter)
}

// Get returns one application owned by the user.
func (s *ApplicationService) Get(ctx context.Context, userID, id string) (*models.Application, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.apps.GetApplication(ctx, userID, id)
}

// Create validates in and stores a new application. Returns
// models.ErrQuotaExceeded when the user already has MaxApplications.
func (s *ApplicationService) Create(ctx context.Context, userID string, in models.ApplicationInput) (*models.Application, error) {
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return nil, fmt.Errorf("%w: company is required", models.ErrInvalidInput)
	}

	status := models.StatusApplied
	if strings.TrimSpace(in.Status) != "" {
		st, err := models.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	due, err := models.ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	submitted, err := models.ParseDate(in.SubmittedDate)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	app := models.Application{
		ID:            uuid.NewString(),
		UserID:        userID,
		Company:       company,
		Role:          strings.TrimSpace(in.Role),
		Link:          strings.TrimSpace(in.Link),
		Status:        status,
		DueDate:       due,
		SubmittedDate: submitted,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.apps.CreateApplication(ctx, app, MaxApplications); err != nil {
		return nil, err
	}
	return &app, nil
}

// Update applies the fields present in patch to an application.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	now := s.timestamp()
	return s.apps.UpdateApplication(ctx, userID, id, func(a *models.Application) error {
		if patch.Company != nil {
			company := strings.TrimSpace(*patch.Company)
			if company == "" {
				return fmt.Errorf("%w: company is required", models.ErrInvalidInput)
			}
			a.Company = company
		}
		if patch.Role != nil {
			a.Role = strings.TrimSpace(*patch.Role)
		}
		if patch.Link != nil {
			a.Link = strings.TrimSpace(*patch.Link)
		}
		if patch.Status != nil {
			st, err := models.ParseStatus(*patch.Status)
			if err != nil {
				return err
			}
			a.Status = st
		}
		if patch.DueDate != nil {
			d, err := models.ParseDate(*patch.DueDate)
			if err != nil {
				return err
			}
			a.DueDate = d
		}
		if patch.SubmittedDate != nil {
			d, err := models.ParseDate(*patch.SubmittedDate)
			if err != nil {
				return err
			}
			a.SubmittedDate = d
		}
		if patch.Notes != nil {
			a.Notes = *patch.Notes
		}
		a.UpdatedAt = now
		return nil
	})
}

// Delete removes an application together with its deliverables and notes.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.apps.DeleteApplication(ctx, userID, id)
}

// ListDeliverables returns the deliverables of one of the user's applications.
func (s *ApplicationService) ListDeliverables(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error) {
	if err := requireApplicationID(applicationID); err != nil {
		return nil, err
	}
	return s.deliverables.ListDeliverables(ctx, userID, applicationID)
}

// CreateDeliverable adds a deliverable to one of the user's applications.
func (s *ApplicationService) CreateDeliverable(ctx context.Context, userID string, in models.DeliverableInput) (*models.Deliverable, error) {
	if err := requireApplicationID(in.ApplicationID); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: description is required", models.ErrInvalidInput)
	}
	kind, err := models.ParseDeliverableKind(in.Kind)
	if err != nil {
		return nil, err
	}
	due, err := models.ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	state, err := models.ParseDeliverableState(in.State)
	if err != nil {
		return nil, err
	}
	if in.Completed && strings.TrimSpace(in.State) == "" {
		state = models.StateDone
	}

	now := s.timestamp()
	d := models.Deliverable{
		ID:            uuid.NewString(),
		ApplicationID: in.ApplicationID,
		Description:   desc,
		Kind:          kind,
		DueDate:       due,
		Content:       in.Content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	d.SetState(state)
	if err := s.deliverables.CreateDeliverable(ctx, userID, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDeliverable applies the fields present in patch to a deliverable.
func (s *ApplicationService) UpdateDeliverable(ctx context.Context, userID, id string, patch models.DeliverablePatch) (*models.Deliverable, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	now := s.timestamp()
	return s.deliverables.UpdateDeliverable(ctx, userID, id, func(d *models.Deliverable) error {
		if patch.Description != nil {
			desc := strings.TrimSpace(*patch.Description)
			if desc == "" {
				return fmt.Errorf("%w: description is required", models.ErrInvalidInput)
			}
			d.Description = desc
		}
		if patch.Kind != nil {
			kind, err := models.ParseDeliverableKind(*patch.Kind)
			if err != nil {
				return err
			}
			d.Kind = kind
		}
		if patch.DueDate != nil {
			due, err := models.ParseDate(*patch.DueDate)
			if err != nil {
				return err
			}
			d.DueDate = due
		}
		if patch.Content != nil {
			d.Content = *patch.Content
		}
		switch {
		case patch.State != nil:
			state, err := models.ParseDeliverableState(*patch.State)
			if err != nil {
				return err
			}
			d.SetState(state)
		case patch.Completed != nil:
			d.SetCompleted(*patch.Completed)
		}
		d.UpdatedAt = now
		return nil
	})
}

// DeleteDeliverable removes one deliverable.
func (s *ApplicationService) DeleteDeliverable(ctx context.Context, userID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.deliverables.DeleteDeliverable(ctx, userID, id, s.timestamp())
}

// ListWritingNotes returns the writing notes of one of the user's applications.
// A non-empty query keeps notes whose title, tags or content contain it.
func (s *ApplicationService) ListWritingNotes(ctx context.Context, userID, applicationID, query string) ([]models.WritingNote, error) {
	if err := requireApplicationID(applicationID); err != nil {
		return nil, err
	}
	return s.writing.ListWritingNotes(ctx, userID, models.WritingFilter{
		ApplicationID: applicationID,
		Query:         strings.TrimSpace(query),
	})
}

// CreateWritingNote adds a writing note to one of the user's applications.
func (s *ApplicationService) CreateWritingNote(ctx context.Context, userID string, in models.WritingNoteInput) (*models.WritingNote, error) {
	if err := requireApplicationID(in.ApplicationID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrInvalidInput)
	}

	now := s.timestamp()
	n := models.WritingNote{
		ID:            uuid.NewString(),
		ApplicationID: in.ApplicationID,
		Title:         strings.TrimSpace(in.Title),
		Tags:          models.NormalizeTags(in.Tags),
		Content:       in.Content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.writing.CreateWritingNote(ctx, userID, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateWritingNote applies the fields present in patch to a writing note.
func (s *ApplicationService) UpdateWritingNote(ctx context.Context, userID, id string, patch models.WritingNotePatch) (*models.WritingNote, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	now := s.timestamp()
	return s.writing.UpdateWritingNote(ctx, userID, id, func(n *models.WritingNote) error {
		if patch.Title != nil {
			n.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Tags != nil {
			n.Tags = models.NormalizeTags(*patch.Tags)
		}
		if patch.Content != nil {
			if strings.TrimSpace(*patch.Content) == "" {
				return fmt.Errorf("%w: content is required", models.ErrInvalidInput)
			}
			n.Content = *patch.Content
		}
		n.UpdatedAt = now
		return nil
	})
}

// DeleteWritingNote removes one writing note.
func (s *ApplicationService) DeleteWritingNote(ctx context.Context, userID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.writing.DeleteWritingNote(ctx, userID, id, s.timestamp())
}

// validID rejects ids that cannot name a stored row. Such ids are reported
// as missing rather than malformed.
func validID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("id %q: %w", id, models.ErrNotFound)
	}
	return nil
}

func requireApplicationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: application_id is required", models.ErrInvalidInput)
	}
	return validID(id)
}
