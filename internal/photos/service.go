package photos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/luminastudio/studio-backend/pkg/db"
	"github.com/luminastudio/studio-backend/pkg/db/models"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/logger"
	"github.com/luminastudio/studio-backend/pkg/metrics"
	"github.com/luminastudio/studio-backend/pkg/storage/gcs"
)

const (
	defaultWorkers     = 4
	defaultFileTimeout = 60 * time.Second

	sourceEvent = "event"
	sourceFree  = "free"
)

type photoRepository interface {
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error)
	SetFlag(ctx context.Context, ids []uuid.UUID, column string, value bool) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, query ListQuery) ([]models.Photo, int64, error)
}

type eventsRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type storageClient interface {
	Upload(ctx context.Context, object, contentType string, data []byte) error
	ObjectURL(object string) string
}

// cleanupQueue receives storage paths whose objects should eventually be
// removed. Enqueueing is best-effort; a failed enqueue is logged, never
// surfaced to the caller.
type cleanupQueue interface {
	EnqueueDeletes(ctx context.Context, paths []string)
}

// Service exposes the photo ingestion, listing, and moderation surface.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*BatchResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Moderate(ctx context.Context, input ModerateInput) (int64, error)
}

type service struct {
	repo        photoRepository
	events      eventsRepository
	storage     storageClient
	cleanup     cleanupQueue
	thumbnails  *ThumbnailGenerator
	ingestStats *metrics.IngestMetrics
	logg        *logger.Logger
	workers     int
	fileTimeout time.Duration
}

// Options tunes the ingestion pipeline.
type Options struct {
	Workers     int
	FileTimeout time.Duration
	Thumbnails  *ThumbnailGenerator
	Metrics     *metrics.IngestMetrics
}

// NewService constructs the photo service.
func NewService(repo photoRepository, events eventsRepository, storage storageClient, cleanup cleanupQueue, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("photo repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	if cleanup == nil {
		return nil, fmt.Errorf("cleanup queue required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	fileTimeout := opts.FileTimeout
	if fileTimeout <= 0 {
		fileTimeout = defaultFileTimeout
	}
	thumbnails := opts.Thumbnails
	if thumbnails == nil {
		thumbnails = NewThumbnailGenerator(nil, 0)
	}

	return &service{
		repo:        repo,
		events:      events,
		storage:     storage,
		cleanup:     cleanup,
		thumbnails:  thumbnails,
		ingestStats: opts.Metrics,
		logg:        logg,
		workers:     workers,
		fileTimeout: fileTimeout,
	}, nil
}

// UploadFile is one file of an ingestion batch, fully read off the wire.
type UploadFile struct {
	Name         string
	ContentType  string
	Data         []byte
	LastModified *time.Time
}

// IngestInput models one ingestion request.
type IngestInput struct {
	Files       []UploadFile
	EventID     *uuid.UUID
	UploadedBy  uuid.UUID
	Description string
	IsFeatured  bool
	AutoApprove bool
	// AdminDetail controls whether per-file failure messages may carry
	// diagnostic detail. Free uploads get sanitized messages only.
	AdminDetail bool
}

// FileFailure records why one file did not complete ingestion.
type FileFailure struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	Error            string `json:"error"`
}

// BatchResult aggregates per-file outcomes for one ingestion call.
type BatchResult struct {
	Successful []models.Photo `json:"successful"`
	Failed     []FileFailure  `json:"failed"`
	Total      int            `json:"total"`
}

// Ingest runs the full pipeline for each file in the batch. Files are
// processed by a bounded worker pool; one file's failure never cancels
// its siblings, and the batch result is returned once every file has
// reached a terminal state.
func (s *service) Ingest(ctx context.Context, input IngestInput) (*BatchResult, error) {
	if input.UploadedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "uploader identity missing")
	}
	if len(input.Files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files provided")
	}

	// Batch-level gates run before any file is touched.
	if input.EventID != nil {
		exists, err := s.events.Exists(ctx, *input.EventID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check event")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
	}

	source := sourceFree
	if input.EventID != nil {
		source = sourceEvent
	}

	result := &BatchResult{Total: len(input.Files)}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)

	for i := range input.Files {
		file := input.Files[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			started := time.Now()
			fileCtx, cancel := context.WithTimeout(ctx, s.fileTimeout)
			defer cancel()

			photo, failure := s.processFile(fileCtx, file, input, source)
			s.ingestStats.ObserveDuration(source, time.Since(started))

			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				result.Failed = append(result.Failed, *failure)
				return
			}
			result.Successful = append(result.Successful, *photo)
		}()
	}

	wg.Wait()
	return result, nil
}

// processFile takes one file through validate, upload, thumbnail, and
// insert. The returned failure carries the message shown to the caller.
func (s *service) processFile(ctx context.Context, file UploadFile, input IngestInput, source string) (*models.Photo, *FileFailure) {
	fail := func(safeName, reason, metricReason string) (*models.Photo, *FileFailure) {
		s.ingestStats.IncRejected(source, metricReason)
		if safeName == "" {
			safeName = file.Name
		}
		return nil, &FileFailure{
			Filename:         safeName,
			OriginalFilename: file.Name,
			Error:            reason,
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = DetectContentType(file.Data)
	}

	if v := ValidateImageFile(file.Name, int64(len(file.Data)), contentType); !v.IsValid {
		return fail("", v.Error, "validation")
	}

	now := time.Now()
	safeName := GenerateSafeName(file.Name, now)

	eventSegment := ""
	if input.EventID != nil {
		eventSegment = input.EventID.String()
	}
	objectPath := ObjectPath(eventSegment, now, safeName)

	meta := ExtractMetadata(file.Data, contentType, file.LastModified)

	if err := s.storage.Upload(ctx, objectPath, contentType, file.Data); err != nil {
		ctx := s.logg.WithFields(ctx, map[string]any{"object": objectPath})
		s.logg.Warn(ctx, "photo upload failed")
		if errors.Is(err, gcs.ErrObjectExists) {
			return fail(safeName, "storage path already in use", "storage_conflict")
		}
		return fail(safeName, storageFailureMessage(err, input.AdminDetail), "storage")
	}

	thumbs := s.renderThumbnails(ctx, file.Data, objectPath)

	photo := &models.Photo{
		ID:               uuid.New(),
		EventID:          input.EventID,
		UploadedBy:       input.UploadedBy,
		Filename:         safeName,
		OriginalFilename: file.Name,
		StoragePath:      objectPath,
		SizeBytes:        int64(len(file.Data)),
		ContentType:      contentType,
		Width:            meta.Width,
		Height:           meta.Height,
		IsFeatured:       input.IsFeatured,
		IsApproved:       input.AutoApprove,
		Metadata:         buildMetadataBag(meta, thumbs),
	}
	if input.Description != "" {
		photo.Description = &input.Description
	}

	created, err := s.repo.Create(ctx, photo)
	if err != nil {
		// The object is already in storage; hand it to the sweeper so
		// the orphan gets reclaimed eventually.
		orphans := []string{objectPath}
		for _, t := range thumbs {
			orphans = append(orphans, t.Path)
		}
		s.cleanup.EnqueueDeletes(ctx, orphans)
		return fail(safeName, insertFailureMessage(err, input.AdminDetail), "persistence")
	}

	s.ingestStats.IncAccepted(source, created.SizeBytes)
	return created, nil
}

// renderThumbnails produces and uploads derivatives. Every failure here
// is logged and skipped; ingestion never blocks on thumbnails.
func (s *service) renderThumbnails(ctx context.Context, data []byte, originalPath string) []ThumbnailDescriptor {
	img, err := s.thumbnails.Decode(data)
	if err != nil {
		// RAW formats land here; the original is stored either way.
		return nil
	}

	var descriptors []ThumbnailDescriptor
	for _, size := range s.thumbnails.Sizes() {
		rendered, err := s.thumbnails.Render(img, size)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"object": originalPath,
				"size":   size,
			}), "thumbnail render failed")
			continue
		}

		thumbPath := ThumbPath(originalPath, size)
		if err := s.storage.Upload(ctx, thumbPath, "image/jpeg", rendered); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"object": thumbPath,
				"size":   size,
			}), "thumbnail upload failed")
			continue
		}

		descriptors = append(descriptors, ThumbnailDescriptor{
			Size: size,
			Path: thumbPath,
			URL:  s.storage.ObjectURL(thumbPath),
		})
	}
	return descriptors
}

func buildMetadataBag(meta Metadata, thumbs []ThumbnailDescriptor) map[string]any {
	bag := map[string]any{}
	if meta.Camera != "" {
		bag["camera"] = meta.Camera
	}
	if meta.Lens != "" {
		bag["lens"] = meta.Lens
	}
	if meta.ISO > 0 {
		bag["iso"] = meta.ISO
	}
	if meta.Aperture != "" {
		bag["aperture"] = meta.Aperture
	}
	if meta.ShutterSpeed != "" {
		bag["shutter_speed"] = meta.ShutterSpeed
	}
	if meta.FocalLength != "" {
		bag["focal_length"] = meta.FocalLength
	}
	if meta.LastModified != nil {
		bag["last_modified"] = meta.LastModified.UTC().Format(time.RFC3339)
	}
	if len(thumbs) > 0 {
		bag["thumbnails"] = thumbs
	}
	if len(bag) == 0 {
		return nil
	}
	return bag
}

func storageFailureMessage(err error, adminDetail bool) string {
	if adminDetail {
		return fmt.Sprintf("storage upload failed: %v", err)
	}
	return "storage upload failed"
}

// insertFailureMessage translates database rejections into actionable,
// cause-specific messages without exposing raw driver errors to
// unprivileged callers.
func insertFailureMessage(err error, adminDetail bool) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return "permission denied: you are not allowed to create photos here"
		case "23505":
			return "a photo with this storage path already exists"
		case "23514":
			if adminDetail {
				return fmt.Sprintf("record rejected by constraint %s", pgErr.ConstraintName)
			}
			return "record rejected by a data constraint"
		}
	}
	if db.IsUniqueViolation(err, "") {
		return "a photo with this storage path already exists"
	}
	if adminDetail {
		return fmt.Sprintf("failed to save record: %v", err)
	}
	return "failed to save record"
}
