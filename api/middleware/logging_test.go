package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luminastudio/studio-backend/pkg/logger"
)

func loggedHandler(next http.Handler) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return Logging(logg)(next)
}

func TestLoggingPassesRequestThrough(t *testing.T) {
	handler := loggedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected downstream status preserved, got %d", rec.Code)
	}
}

func TestLoggingTolerantOfNilLogger(t *testing.T) {
	called := false
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !called {
		t.Fatal("expected handler to run without a logger")
	}
}

func TestStatusRecorderCapturesStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusCreated)
	if rec.status != http.StatusCreated {
		t.Fatalf("expected 201 captured, got %d", rec.status)
	}
}

func TestStatusRecorderDefaultsOnWrite(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner}

	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if rec.status != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", rec.status)
	}
	if inner.Body.String() != "ok" {
		t.Fatalf("expected body forwarded, got %q", inner.Body.String())
	}
}
