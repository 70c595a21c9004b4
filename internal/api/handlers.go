package api

import (
	"net/http"
	"strconv"
)

// limitParam parses ?limit= with a default and an inclusive cap.
func limitParam(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// handleEvents lists recent events, newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	items, err := s.cat.ListEvents(r.Context(), limitParam(r, 50, 300))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleAssets lists assets in fleet insertion order.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	items, err := s.cat.ListAssets(r.Context(), limitParam(r, 200, 1000))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleAlerts lists recent alerts, newest first. TTL-expired alerts are
// skipped by the catalog, so the result may be shorter than limit.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	items, err := s.cat.ListAlerts(r.Context(), limitParam(r, 50, 300))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("store read failed", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "store unavailable"})
}
