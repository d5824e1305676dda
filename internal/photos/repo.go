package photos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
)

// Repository exposes photo persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a photo repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a photo record.
func (r *Repository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// FindByID retrieves a photo record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var p models.Photo
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs retrieves the photo rows matching the given identifiers.
// Missing ids are silently absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error) {
	var rows []models.Photo
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetFlag updates one boolean moderation column for the given photos and
// returns the number of affected rows.
func (r *Repository) SetFlag(ctx context.Context, ids []uuid.UUID, column string, value bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("id IN ?", ids).
		Update(column, value)
	return res.RowsAffected, res.Error
}

// DeleteByIDs removes photo rows and returns the number deleted. Storage
// cleanup runs separately; row deletion never waits on object presence.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Photo{})
	return res.RowsAffected, res.Error
}

// ListApprovedForEvent returns every approved photo attached to an
// event, newest first. Used by the public gallery.
func (r *Repository) ListApprovedForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Photo, error) {
	var rows []models.Photo
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_approved = ?", eventID, true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns a page of photos matching the query plus the unpaged total.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Photo, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Photo{})
	base = applyListFilters(base, query)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Photo
	err := base.
		Order(query.OrderClause()).
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyListFilters(tx *gorm.DB, query ListQuery) *gorm.DB {
	if query.EventID != nil {
		tx = tx.Where("event_id = ?", *query.EventID)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		tx = tx.Where(
			"original_filename ILIKE ? OR description ILIKE ?",
			pattern, pattern,
		)
	}
	if query.Featured != nil {
		tx = tx.Where("is_featured = ?", *query.Featured)
	}
	if query.Approved != nil {
		tx = tx.Where("is_approved = ?", *query.Approved)
	}
	if query.PublicOnly {
		// Non-admin callers only see approved photos inside events a
		// client may view. Free uploads have no event and stay hidden.
		tx = tx.Where("is_approved = ?", true).
			Where(
				"event_id IN (?)",
				tx.Session(&gorm.Session{NewDB: true}).
					Model(&models.Event{}).
					Select("id").
					Where("status IN ?", []enums.EventStatus{
						enums.EventStatusPublished,
						enums.EventStatusCompleted,
					}),
			)
	}
	return tx
}
