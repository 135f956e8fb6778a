package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ByLCY/lessonplan/export"
	"github.com/ByLCY/lessonplan/exportlog"
	"github.com/ByLCY/lessonplan/record"
)

// readRecord decodes the request body as a raw lesson-plan record. YAML is
// accepted when the content type says so.
func readRecord(w http.ResponseWriter, r *http.Request) (any, bool) {
	format := record.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = record.FormatYAML
	}
	raw, err := record.Decode(r.Body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "invalid lesson plan: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return raw, true
}

// handleResolve returns the normalized document and its labels.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	doc, labels := s.exporter.Resolve(raw)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"document": doc,
		"labels":   labels,
	})
}

// handleLayout returns the paginated draw operations.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	result, _, err := s.exporter.Layout(raw)
	if err != nil {
		s.log.Error("layout failed", "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"pageCount": len(result.Pages),
		"result":    result,
	})
}

// handleExport streams the rendered artifact, or a JSON failure result.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	res := s.exporter.Export(r.Context(), raw, format)
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// handlePreview returns one page as PNG. page is 1-based.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = n
	}
	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	data, pages, err := s.exporter.PreviewPage(raw, page-1)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", export.PNG.ContentType())
	w.Header().Set("X-Page-Count", strconv.Itoa(pages))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleListExports lists recent export attempts.
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"exports": []exportlog.Entry{}})
		return
	}
	q := r.URL.Query()
	params := exportlog.ListParams{Format: q.Get("format")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		params.Limit = n
	}
	if v := q.Get("failed"); v != "" {
		failed, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "failed must be a boolean", http.StatusBadRequest)
			return
		}
		params.FailedOnly = failed
	}
	entries, err := s.history.List(r.Context(), params)
	if err != nil {
		s.log.Error("list exports", "error", err)
		jsonError(w, "failed to list exports", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []exportlog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": entries})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
