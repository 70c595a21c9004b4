package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fusionops-sim/internal/metrics"
)

// writeFrame emits one SSE frame: "event: <type>\ndata: <json>\n\n".
func writeFrame(w http.ResponseWriter, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, raw)
}

// handleStream replays update-log entries appended after the connection was
// established, one SSE frame per entry, plus periodic heartbeats. History is
// never replayed: the cursor starts at the current log length.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	cursor, err := s.cat.UpdatesLen(ctx)
	if err != nil {
		s.storeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	// Reconnect hint, then the hello frame.
	fmt.Fprintf(w, "retry: %d\n\n", s.stream.RetryMs)
	writeFrame(w, "hello", map[string]any{"ok": true, "ts": time.Now().Unix()})
	flusher.Flush()

	heartbeat := time.Duration(s.stream.HeartbeatSec) * time.Second
	poll := time.Duration(s.stream.PollMs) * time.Millisecond
	lastBeat := time.Now()

	for {
		length, err := s.cat.UpdatesLen(ctx)
		if err != nil {
			// Transient store trouble: skip this poll, keep the connection.
			s.log.Error("stream length poll failed", "err", err)
		} else if length > cursor {
			items, err := s.cat.UpdatesRange(ctx, cursor, length-1)
			if err != nil {
				s.log.Error("stream range read failed", "err", err)
			} else {
				cursor = length
				for _, u := range items {
					writeFrame(w, u.Type, u.Data)
				}
				flusher.Flush()
			}
		} else if length < cursor {
			// The log was cleared (admin reset); resume from the new tail.
			cursor = length
		}

		if time.Since(lastBeat) >= heartbeat {
			writeFrame(w, "heartbeat", map[string]any{"t": time.Now().Unix()})
			flusher.Flush()
			lastBeat = time.Now()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(poll):
		}
	}
}
