package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/api/middleware"
	"github.com/luminastudio/studio-backend/internal/photos"
	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
	"github.com/luminastudio/studio-backend/pkg/logger"
)

type stubPhotoService struct {
	ingestInput  *photos.IngestInput
	ingestResult *photos.BatchResult
	ingestErr    error

	listParams *photos.ListParams
	listResult *photos.ListResult
	listErr    error

	moderateInput *photos.ModerateInput
	affected      int64
	moderateErr   error
}

func (s *stubPhotoService) Ingest(ctx context.Context, input photos.IngestInput) (*photos.BatchResult, error) {
	s.ingestInput = &input
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	if s.ingestResult != nil {
		return s.ingestResult, nil
	}
	return &photos.BatchResult{Total: len(input.Files)}, nil
}

func (s *stubPhotoService) List(ctx context.Context, params photos.ListParams) (*photos.ListResult, error) {
	s.listParams = &params
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &photos.ListResult{}, nil
}

func (s *stubPhotoService) Moderate(ctx context.Context, input photos.ModerateInput) (int64, error) {
	s.moderateInput = &input
	return s.affected, s.moderateErr
}

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func authedContext(userID uuid.UUID, role string) context.Context {
	ctx := middleware.WithUserID(context.Background(), userID.String())
	return middleware.WithRole(ctx, role)
}

func TestPhotosUploadSuccess(t *testing.T) {
	svc := &stubPhotoService{
		ingestResult: &photos.BatchResult{
			Successful: []models.Photo{{ID: uuid.New()}},
			Total:      1,
		},
	}
	userID := uuid.New()
	eventID := uuid.New()

	body, contentType := multipartBody(t,
		map[string]string{"event_id": eventID.String(), "description": "reception"},
		map[string][]byte{"dance.jpg": {1, 2, 3}},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(authedContext(userID, enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosUpload(svc, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.ingestInput == nil {
		t.Fatal("expected ingest invoked")
	}
	if svc.ingestInput.EventID == nil || *svc.ingestInput.EventID != eventID {
		t.Fatalf("expected event id forwarded, got %v", svc.ingestInput.EventID)
	}
	if svc.ingestInput.UploadedBy != userID {
		t.Fatalf("expected uploader forwarded, got %v", svc.ingestInput.UploadedBy)
	}
	if !svc.ingestInput.AdminDetail {
		t.Fatal("event uploads carry admin detail")
	}
	if !svc.ingestInput.AutoApprove {
		t.Fatal("event uploads auto-approve by default")
	}
	if len(svc.ingestInput.Files) != 1 || svc.ingestInput.Files[0].Name != "dance.jpg" {
		t.Fatalf("unexpected files %+v", svc.ingestInput.Files)
	}

	var envelope struct {
		Data photos.Report `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data.Success || envelope.Data.Summary.Successful != 1 {
		t.Fatalf("unexpected report %+v", envelope.Data)
	}
}

func TestPhotosUploadRequiresEventID(t *testing.T) {
	body, contentType := multipartBody(t, nil, map[string][]byte{"a.jpg": {1}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosUpload(&stubPhotoService{}, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "event_id is required") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestPhotosUploadRequiresFiles(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{"event_id": uuid.NewString()}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosUpload(&stubPhotoService{}, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no files provided") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestPhotosUploadRequiresAuthContext(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{"event_id": uuid.NewString()}, map[string][]byte{"a.jpg": {1}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	PhotosUpload(&stubPhotoService{}, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPhotosFreeUploadDefaults(t *testing.T) {
	svc := &stubPhotoService{}
	body, contentType := multipartBody(t, nil, map[string][]byte{"guest.jpg": {1, 2}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/free-upload", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleClient.String()))

	rec := httptest.NewRecorder()
	PhotosFreeUpload(svc, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.ingestInput.EventID != nil {
		t.Fatalf("free uploads carry no event, got %v", svc.ingestInput.EventID)
	}
	if svc.ingestInput.AdminDetail {
		t.Fatal("free uploads must not expose admin detail")
	}
	if svc.ingestInput.AutoApprove {
		t.Fatal("free uploads default to unapproved")
	}
}

func TestPhotosListQueryParsing(t *testing.T) {
	svc := &stubPhotoService{}
	eventID := uuid.New()

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/photos?page=2&limit=10&event_id="+eventID.String()+"&featured=true&approved=false&search=sunset&sort=size&order=asc", nil)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleClient.String()))

	rec := httptest.NewRecorder()
	PhotosList(svc, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p := svc.listParams
	if p.Page.Page != 2 || p.Page.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", p.Page)
	}
	if p.EventID == nil || *p.EventID != eventID {
		t.Fatalf("expected event filter, got %v", p.EventID)
	}
	if p.Featured == nil || !*p.Featured || p.Approved == nil || *p.Approved {
		t.Fatalf("unexpected flags %+v", p)
	}
	if p.Search != "sunset" || p.Sort != "size" || p.Order != "asc" {
		t.Fatalf("unexpected query fields %+v", p)
	}
	if !p.PublicOnly {
		t.Fatal("non-admin callers must be public-only")
	}
}

func TestPhotosListAdminSeesEverything(t *testing.T) {
	svc := &stubPhotoService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosList(svc, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listParams.PublicOnly {
		t.Fatal("admin listing must not be public-only")
	}
}

func TestPhotosListInvalidEventID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/photos?event_id=not-a-uuid", nil)
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosList(&stubPhotoService{}, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPhotosPatch(t *testing.T) {
	svc := &stubPhotoService{affected: 2}
	ids := []string{uuid.NewString(), uuid.NewString()}
	payload, _ := json.Marshal(map[string]any{
		"photo_ids": ids,
		"operation": "approve",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/photos", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

	rec := httptest.NewRecorder()
	PhotosPatch(svc, controllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.moderateInput == nil || svc.moderateInput.Operation != enums.PhotoOperationApprove {
		t.Fatalf("unexpected moderate input %+v", svc.moderateInput)
	}
	if len(svc.moderateInput.PhotoIDs) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(svc.moderateInput.PhotoIDs))
	}

	var envelope struct {
		Data struct {
			Success       bool   `json:"success"`
			AffectedCount int64  `json:"affected_count"`
			Message       string `json:"message"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data.Success || envelope.Data.AffectedCount != 2 {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
}

func TestPhotosPatchValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty ids", `{"photo_ids":[],"operation":"approve"}`},
		{"missing operation", `{"photo_ids":["` + uuid.NewString() + `"]}`},
		{"unknown operation", `{"photo_ids":["` + uuid.NewString() + `"],"operation":"publish"}`},
		{"bad id", `{"photo_ids":["nope"],"operation":"approve"}`},
		{"not json", `photo_ids=abc`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/photos", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(authedContext(uuid.New(), enums.UserRoleAdmin.String()))

		rec := httptest.NewRecorder()
		PhotosPatch(&stubPhotoService{}, controllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tc.name, rec.Code, rec.Body.String())
		}
	}
}

func TestPhotosHandlersRequireService(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
	rec := httptest.NewRecorder()
	PhotosList(nil, controllerLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
