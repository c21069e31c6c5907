package processing

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/onboardflow/platform/pkg/common/models"
	"github.com/onboardflow/platform/pkg/vision"
)

func newTestRouter(store *stubStore, analyzer *stubAnalyzer, notifier *stubNotifier) *mux.Router {
	svc := NewService(store, analyzer, notifier, nil, nil, 0)
	handler := NewHTTPHandler(svc, 1<<20)
	router := mux.NewRouter()
	handler.Register(router.PathPrefix("/api/v1").Subrouter())
	return router
}

func TestHandleProcessSuccess(t *testing.T) {
	store := &stubStore{}
	router := newTestRouter(store, &stubAnalyzer{outcome: fixedOutcome()}, &stubNotifier{result: true})

	body, err := json.Marshal(validRequest())
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/process-documents", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.ProcessResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.Data["full_name"] != "Jane Doe" {
		t.Fatalf("expected extracted data in response, got %v", result.Data)
	}
	if len(store.docs) != 1 {
		t.Fatalf("expected one persisted document, got %d", len(store.docs))
	}
}

func TestHandleProcessRejectsMissingDocument(t *testing.T) {
	router := newTestRouter(&stubStore{}, &stubAnalyzer{outcome: fixedOutcome()}, &stubNotifier{result: true})

	req := validRequest()
	req.Back.Data = ""
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/process-documents", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProcessRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&stubStore{}, &stubAnalyzer{outcome: fixedOutcome()}, &stubNotifier{result: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/process-documents", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProcessReportsFailure(t *testing.T) {
	analyzer := &stubAnalyzer{outcome: vision.Outcome{Err: errors.New("upstream unavailable")}}
	router := newTestRouter(&stubStore{}, analyzer, &stubNotifier{result: true})

	body, err := json.Marshal(validRequest())
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/process-documents", bytes.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var result models.ProcessResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected failure payload, got %+v", result)
	}
}

func TestHandleStatusNotFound(t *testing.T) {
	router := newTestRouter(&stubStore{}, &stubAnalyzer{outcome: fixedOutcome()}, &stubNotifier{result: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/process/unknown-id/status", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
