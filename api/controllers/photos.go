package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/api/middleware"
	"github.com/luminastudio/studio-backend/api/responses"
	"github.com/luminastudio/studio-backend/api/validators"
	"github.com/luminastudio/studio-backend/internal/photos"
	"github.com/luminastudio/studio-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/logger"
	"github.com/luminastudio/studio-backend/pkg/pagination"
)

// maxMultipartMemory bounds how much of a multipart body stays in RAM
// before spilling to temp files.
const maxMultipartMemory = 32 << 20

// PhotosUpload handles event-scoped batch ingestion. Admin-gated.
func PhotosUpload(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		uid, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		rawEventID := strings.TrimSpace(r.FormValue("event_id"))
		if rawEventID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event_id is required"))
			return
		}
		eventID, err := uuid.Parse(rawEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event_id"))
			return
		}

		files, err := readUploadFiles(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := photos.IngestInput{
			Files:       files,
			EventID:     &eventID,
			UploadedBy:  uid,
			Description: strings.TrimSpace(r.FormValue("description")),
			IsFeatured:  formBool(r, "is_featured", false),
			AutoApprove: formBool(r, "auto_approve", true),
			AdminDetail: true,
		}

		result, err := svc.Ingest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, photos.BuildReport(result))
	}
}

// PhotosFreeUpload handles unattached uploads. Any authenticated caller
// may use it; failure messages are sanitized.
func PhotosFreeUpload(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		uid, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		files, err := readUploadFiles(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := photos.IngestInput{
			Files:       files,
			UploadedBy:  uid,
			Description: strings.TrimSpace(r.FormValue("description")),
			IsFeatured:  formBool(r, "is_featured", false),
			AutoApprove: formBool(r, "auto_approve", false),
			AdminDetail: false,
		}

		result, err := svc.Ingest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, photos.BuildReport(result))
	}
}

// PhotosList returns a filtered page of photos. Non-admin callers only
// see approved photos in client-visible events.
func PhotosList(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		query := r.URL.Query()
		params := photos.ListParams{
			Page:       pagination.FromQuery(query),
			Search:     query.Get("search"),
			Sort:       query.Get("sort"),
			Order:      query.Get("order"),
			PublicOnly: middleware.RoleFromContext(r.Context()) != enums.UserRoleAdmin.String(),
		}

		if raw := strings.TrimSpace(query.Get("event_id")); raw != "" {
			eventID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event_id"))
				return
			}
			params.EventID = &eventID
		}
		if raw := strings.TrimSpace(query.Get("featured")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid featured flag"))
				return
			}
			params.Featured = &value
		}
		if raw := strings.TrimSpace(query.Get("approved")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid approved flag"))
				return
			}
			params.Approved = &value
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type photosPatchRequest struct {
	PhotoIDs  []string `json:"photo_ids" validate:"required,min=1"`
	Operation string   `json:"operation" validate:"required"`
	Value     *bool    `json:"value"`
}

type photosPatchResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AffectedCount int64  `json:"affected_count"`
}

// PhotosPatch applies one bulk moderation operation. Admin-gated.
func PhotosPatch(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		var payload photosPatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		operation, err := enums.ParsePhotoOperation(strings.TrimSpace(payload.Operation))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation"))
			return
		}

		ids := make([]uuid.UUID, 0, len(payload.PhotoIDs))
		for _, raw := range payload.PhotoIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo id"))
				return
			}
			ids = append(ids, id)
		}

		affected, err := svc.Moderate(r.Context(), photos.ModerateInput{
			PhotoIDs:  ids,
			Operation: operation,
			Value:     payload.Value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, photosPatchResponse{
			Success:       true,
			Message:       operation.String() + " applied",
			AffectedCount: affected,
		})
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

func readUploadFiles(r *http.Request) ([]photos.UploadFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files provided")
	}

	headers := r.MultipartForm.File["files"]
	files := make([]photos.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readOneFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readOneFile(header *multipart.FileHeader) (photos.UploadFile, error) {
	part, err := header.Open()
	if err != nil {
		return photos.UploadFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file part")
	}
	defer part.Close()

	// Read one byte past the ceiling so the validator can reject
	// oversized files without buffering the whole body.
	data, err := io.ReadAll(io.LimitReader(part, photos.MaxUploadBytes+1))
	if err != nil {
		return photos.UploadFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading file part")
	}

	upload := photos.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if raw := header.Header.Get("Last-Modified"); raw != "" {
		if t, err := time.Parse(http.TimeFormat, raw); err == nil {
			upload.LastModified = &t
		}
	}
	return upload, nil
}

func formBool(r *http.Request, key string, defaultValue bool) bool {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
