package photos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
	"github.com/luminastudio/studio-backend/pkg/types"
)

func setupPhotosTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  event_date DATETIME,
  status TEXT NOT NULL DEFAULT 'draft',
  access_code TEXT NOT NULL UNIQUE,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	photos := `
CREATE TABLE IF NOT EXISTS photos (
  id TEXT PRIMARY KEY,
  event_id TEXT,
  uploaded_by TEXT NOT NULL,
  filename TEXT NOT NULL,
  original_filename TEXT NOT NULL,
  storage_path TEXT NOT NULL UNIQUE,
  size_bytes INTEGER NOT NULL,
  content_type TEXT NOT NULL,
  width INTEGER,
  height INTEGER,
  description TEXT,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_approved INTEGER NOT NULL DEFAULT 0,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	require.NoError(t, db.Exec(photos).Error)
	return db
}

func seedPhoto(t *testing.T, db *gorm.DB, mutate func(*models.Photo)) models.Photo {
	t.Helper()
	photo := models.Photo{
		ID:               uuid.New(),
		UploadedBy:       uuid.New(),
		Filename:         "1_ab_photo.jpg",
		OriginalFilename: "photo.jpg",
		StoragePath:      "events/free/2026-08-14/" + uuid.NewString() + ".jpg",
		SizeBytes:        1024,
		ContentType:      "image/jpeg",
		CreatedAt:        time.Now().UTC(),
	}
	if mutate != nil {
		mutate(&photo)
	}
	require.NoError(t, db.Create(&photo).Error)
	return photo
}

func seedEvent(t *testing.T, db *gorm.DB, status enums.EventStatus) models.Event {
	t.Helper()
	event := models.Event{
		ID:         uuid.New(),
		Name:       "Shoot",
		Status:     status,
		AccessCode: uuid.NewString()[:8],
		CreatedBy:  uuid.New(),
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	photo := seedPhoto(t, db, func(p *models.Photo) {
		p.Metadata = types.JSONMap{"camera": "Canon EOS R5"}
	})

	found, err := repo.FindByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.StoragePath, found.StoragePath)
	assert.Equal(t, "Canon EOS R5", found.Metadata["camera"])

	rows, err := repo.FindByIDs(ctx, []uuid.UUID{photo.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRepositoryCreateDuplicateStoragePath(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	photo := seedPhoto(t, db, nil)

	dup := photo
	dup.ID = uuid.New()
	_, err := repo.Create(ctx, &dup)
	assert.Error(t, err)
}

func TestRepositorySetFlag(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedPhoto(t, db, nil)
	second := seedPhoto(t, db, nil)

	affected, err := repo.SetFlag(ctx, []uuid.UUID{first.ID, second.ID, uuid.New()}, "is_approved", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, found.IsApproved)
}

func TestRepositoryDeleteByIDs(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	photo := seedPhoto(t, db, nil)
	kept := seedPhoto(t, db, nil)

	affected, err := repo.DeleteByIDs(ctx, []uuid.UUID{photo.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = repo.FindByID(ctx, photo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestRepositoryListApprovedForEvent(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := seedEvent(t, db, enums.EventStatusPublished)
	seedPhoto(t, db, func(p *models.Photo) {
		p.EventID = &event.ID
		p.IsApproved = true
	})
	seedPhoto(t, db, func(p *models.Photo) {
		p.EventID = &event.ID
		p.IsApproved = false
	})
	seedPhoto(t, db, func(p *models.Photo) {
		p.IsApproved = true
	})

	rows, err := repo.ListApprovedForEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRepositoryListFiltersAndPaging(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := seedEvent(t, db, enums.EventStatusPublished)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		offset := time.Duration(i) * time.Hour
		featured := i%2 == 0
		seedPhoto(t, db, func(p *models.Photo) {
			p.EventID = &event.ID
			p.IsApproved = true
			p.IsFeatured = featured
			p.CreatedAt = base.Add(offset)
			p.SizeBytes = int64(1000 + i)
		})
	}

	featured := true
	rows, total, err := repo.List(ctx, ListQuery{
		Limit:      10,
		EventID:    &event.ID,
		Featured:   &featured,
		sortColumn: "created_at",
		descending: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].CreatedAt.After(rows[2].CreatedAt))

	// Paging: two per page over five rows.
	rows, total, err = repo.List(ctx, ListQuery{
		Limit:      2,
		Offset:     4,
		EventID:    &event.ID,
		sortColumn: "size_bytes",
		descending: false,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1004), rows[0].SizeBytes)
}

func TestRepositoryListPublicOnly(t *testing.T) {
	db := setupPhotosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	visible := seedEvent(t, db, enums.EventStatusPublished)
	draft := seedEvent(t, db, enums.EventStatusDraft)

	// Approved photo in a published event: the only publicly visible row.
	seedPhoto(t, db, func(p *models.Photo) {
		p.EventID = &visible.ID
		p.IsApproved = true
	})
	// Unapproved photo in a published event.
	seedPhoto(t, db, func(p *models.Photo) {
		p.EventID = &visible.ID
	})
	// Approved photo in a draft event.
	seedPhoto(t, db, func(p *models.Photo) {
		p.EventID = &draft.ID
		p.IsApproved = true
	})
	// Approved free upload with no event.
	seedPhoto(t, db, func(p *models.Photo) {
		p.IsApproved = true
	})

	rows, total, err := repo.List(ctx, ListQuery{
		Limit:      10,
		PublicOnly: true,
		sortColumn: "created_at",
		descending: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, &visible.ID, rows[0].EventID)
}
