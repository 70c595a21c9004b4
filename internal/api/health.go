package api

import (
	"net/http"
	"time"
)

// handleHealth reports liveness, entity counts, stream backlog, store
// reachability, and freshness timestamps for the dashboard chips.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	ctx := r.Context()

	events, _ := s.cat.EventCount(ctx)
	assets, _ := s.cat.AssetCount(ctx)
	alerts, _ := s.cat.AlertCount(ctx)
	backlog, _ := s.cat.UpdatesLen(ctx)

	storeOK := s.cat.Store().Ping(ctx) == nil

	freshness := map[string]any{
		"events_latest": nil,
		"assets_latest": nil,
		"alerts_latest": nil,
	}
	if e, ok, _ := s.cat.TailEvent(ctx); ok {
		freshness["events_latest"] = e.CreatedAt
	}
	if a, ok, _ := s.cat.TailAsset(ctx); ok {
		freshness["assets_latest"] = a.LastUpdate
	}
	if a, ok, _ := s.cat.TailAlert(ctx); ok {
		freshness["alerts_latest"] = a.CreatedAt
	}

	now := time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"utc":            now,
		"started_at":     s.startedAt,
		"uptime_seconds": int(now.Sub(s.startedAt).Seconds()),
		"counts": map[string]int64{
			"events": events,
			"assets": assets,
			"alerts": alerts,
		},
		"stream_backlog": backlog,
		"store":          map[string]bool{"ok": storeOK},
		"freshness":      freshness,
		"latency_ms":     float64(time.Since(t0).Microseconds()) / 1000,
	})
}
