package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/lessonplan/config"
	"github.com/ByLCY/lessonplan/export"
	"github.com/ByLCY/lessonplan/exportlog"
	"github.com/ByLCY/lessonplan/logger"
)

const samplePlan = `{
  "administrativeDetails": {"subject": "Biology", "date": "2026-03-01"},
  "learningOutcomes": [{"id": 1, "outcome": "Define cell"}]
}`

func newTestServer(t *testing.T, apiKey string) (*Server, *exportlog.Store) {
	t.Helper()
	store, err := exportlog.Open(filepath.Join(t.TempDir(), "exports.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	exp, err := export.New(export.Options{Recorder: store, DPI: 36})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	cfg := config.Default()
	cfg.APIKey = apiKey
	cfg.MaxBodyBytes = 4096
	return NewServer(exp, store, logger.Nop(), cfg), store
}

func do(s *Server, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	rec := do(s, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	if rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", samplePlan, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", samplePlan, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", rec.Code)
	}
	if body := decode(t, rec); body["success"] != false || body["error"] != "invalid api key" {
		t.Fatalf("unexpected error body %v", body)
	}
	if rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", samplePlan, "secret"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestResolveEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", samplePlan, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	doc := body["document"].(map[string]any)
	if doc["subject"] != "Biology" || doc["language"] != "en" {
		t.Fatalf("unexpected document %v", doc)
	}
	outcomes := doc["learningOutcomes"].([]any)
	if len(outcomes) != 1 {
		t.Fatalf("expected one outcome, got %v", outcomes)
	}
}

func TestResolveYAMLBody(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/lesson-plans/resolve", strings.NewReader("MAELEZO YA KIUTAWALA:\n  Somo: Kiswahili\n"))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	labels := decode(t, rec)["labels"].(map[string]any)
	if labels["isSecondLanguage"] != true {
		t.Fatalf("expected Kiswahili labels, got %v", labels)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodPost, "/api/lesson-plans/layout", samplePlan, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["pageCount"] != float64(1) {
		t.Fatalf("unexpected page count %v", body["pageCount"])
	}
}

func TestExportEndpoint(t *testing.T) {
	s, store := newTestServer(t, "")
	rec := do(s, http.MethodPost, "/api/lesson-plans/export?format=pdf", samplePlan, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Biology - 2026-03-01.pdf"` {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf bytes")
	}

	rec = do(s, http.MethodPost, "/api/lesson-plans/export?format=odt", samplePlan, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/exports?format=pdf", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	exports := decode(t, rec)["exports"].([]any)
	if len(exports) != 1 {
		t.Fatalf("expected one recorded export, got %v", exports)
	}
	entries, err := store.List(t.Context(), exportlog.ListParams{})
	if err != nil || len(entries) != 1 || entries[0].Filename != "Biology - 2026-03-01.pdf" {
		t.Fatalf("unexpected store entries %+v %v", entries, err)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodPost, "/api/lesson-plans/preview?page=1", samplePlan, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected preview response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := do(s, http.MethodPost, "/api/lesson-plans/preview?page=9", samplePlan, ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing page, got %d", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/lesson-plans/preview?page=0", samplePlan, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page 0, got %d", rec.Code)
	}
}

func TestBadBodies(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", "{not json", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
	big := `{"subject": "` + strings.Repeat("x", 5000) + `"}`
	if rec := do(s, http.MethodPost, "/api/lesson-plans/resolve", big, ""); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/exports?limit=-1", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rec.Code)
	}
}

func TestListExportsWithoutHistory(t *testing.T) {
	exp, err := export.New(export.Options{})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	s := NewServer(exp, nil, nil, config.Default())
	rec := do(s, http.MethodGet, "/api/exports", "", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"exports":[]}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
