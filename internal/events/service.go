package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/pagination"
)

const accessCodeLen = 8

type eventsRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindByAccessCode(ctx context.Context, code string) (*models.Event, error)
	List(ctx context.Context, limit, offset int) ([]models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type galleryPhotos interface {
	ListApprovedForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Photo, error)
}

// Service exposes event lifecycle and gallery access semantics.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, page pagination.Params) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Gallery(ctx context.Context, accessCode string) (*GalleryResult, error)
}

type service struct {
	repo   eventsRepository
	photos galleryPhotos
}

// NewService constructs the events service.
func NewService(repo eventsRepository, photos galleryPhotos) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if photos == nil {
		return nil, fmt.Errorf("photos repository required")
	}
	return &service{repo: repo, photos: photos}, nil
}

// CreateInput models a new event.
type CreateInput struct {
	Name      string
	EventDate *time.Time
	CreatedBy uuid.UUID
}

// UpdateInput carries the mutable event fields. Nil means unchanged.
type UpdateInput struct {
	Name      *string
	EventDate *time.Time
	Status    *enums.EventStatus
}

// ListResult returns one page of events plus pagination metadata.
type ListResult struct {
	Events     []models.Event  `json:"events"`
	Pagination pagination.Meta `json:"pagination"`
}

// GalleryResult is the client-facing view behind an access code.
type GalleryResult struct {
	Event  models.Event   `json:"event"`
	Photos []models.Photo `json:"photos"`
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "creator identity missing")
	}

	event := &models.Event{
		ID:         uuid.New(),
		Name:       name,
		EventDate:  input.EventDate,
		Status:     enums.EventStatusDraft,
		AccessCode: NewAccessCode(),
		CreatedBy:  input.CreatedBy,
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist event")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return &ListResult{
		Events:     rows,
		Pagination: pagination.BuildMeta(page, total),
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		event.Name = name
	}
	if input.EventDate != nil {
		event.EventDate = input.EventDate
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid event status")
		}
		event.Status = *input.Status
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}

// Gallery resolves an access code into a client-visible event and its
// approved photos. Draft and archived events behave as not found so the
// code leaks nothing about their existence.
func (s *service) Gallery(ctx context.Context, accessCode string) (*GalleryResult, error) {
	code := strings.TrimSpace(accessCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access code is required")
	}

	event, err := s.repo.FindByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	if !event.Status.IsClientVisible() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
	}

	photos, err := s.photos.ListApprovedForEvent(ctx, event.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gallery photos")
	}

	return &GalleryResult{Event: *event, Photos: photos}, nil
}

// NewAccessCode produces a short shareable gallery token.
func NewAccessCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:accessCodeLen]
}
