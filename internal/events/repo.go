package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/studio-backend/pkg/db/models"
)

// Repository exposes event persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an event repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an event record.
func (r *Repository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// FindByID retrieves an event by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByAccessCode retrieves an event by its gallery access code.
func (r *Repository) FindByAccessCode(ctx context.Context, code string) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, "access_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Exists reports whether an event row exists for the given ID.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of events ordered by creation time plus the total.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Event, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Event{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Event
	err := base.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists the mutable fields of an event.
func (r *Repository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event row. Photos keep their rows with event_id
// nulled by the schema's ON DELETE SET NULL.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{}).Error
}
