package photos

import (
	"context"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
)

// ModerateInput models one bulk moderation request.
type ModerateInput struct {
	PhotoIDs  []uuid.UUID
	Operation enums.PhotoOperation
	// Value optionally inverts the flag implied by the operation, e.g.
	// operation=feature value=false behaves like unfeature.
	Value *bool
}

// Moderate applies one operation to a set of photos and returns the
// affected row count. Delete removes database rows immediately; the
// underlying storage objects are reclaimed asynchronously.
func (s *service) Moderate(ctx context.Context, input ModerateInput) (int64, error) {
	if len(input.PhotoIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "photo_ids is required")
	}
	if !input.Operation.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation")
	}

	if input.Operation == enums.PhotoOperationDelete {
		return s.deletePhotos(ctx, input.PhotoIDs)
	}

	column, value := flagForOperation(input.Operation)
	if input.Value != nil {
		value = *input.Value
	}

	affected, err := s.repo.SetFlag(ctx, input.PhotoIDs, column, value)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update photo flags")
	}
	return affected, nil
}

// deletePhotos removes the rows first, then queues the storage paths for
// the sweeper. Row deletion never depends on object presence, so photos
// whose objects were removed out-of-band still delete cleanly.
func (s *service) deletePhotos(ctx context.Context, ids []uuid.UUID) (int64, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photos")
	}

	affected, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photos")
	}

	if paths := collectStoragePaths(rows); len(paths) > 0 {
		s.cleanup.EnqueueDeletes(ctx, paths)
	}
	return affected, nil
}

func flagForOperation(op enums.PhotoOperation) (string, bool) {
	switch op {
	case enums.PhotoOperationApprove:
		return "is_approved", true
	case enums.PhotoOperationReject:
		return "is_approved", false
	case enums.PhotoOperationFeature:
		return "is_featured", true
	default:
		return "is_featured", false
	}
}

// collectStoragePaths gathers each photo's original object plus every
// thumbnail recorded in its metadata manifest.
func collectStoragePaths(rows []models.Photo) []string {
	var paths []string
	for _, p := range rows {
		if p.StoragePath != "" {
			paths = append(paths, p.StoragePath)
		}
		raw, ok := p.Metadata["thumbnails"]
		if !ok {
			continue
		}
		entries, ok := raw.([]any)
		if !ok {
			continue
		}
		for _, entry := range entries {
			thumb, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if path, ok := thumb["path"].(string); ok && path != "" {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
