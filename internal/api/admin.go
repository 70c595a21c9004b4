package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"fusionops-sim/internal/admin"
)

// actorID derives the best-effort caller fingerprint used in admin notices.
func actorID(r *http.Request) string {
	addr := r.Header.Get("X-Forwarded-For")
	if addr == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		addr = host
	} else if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = strings.TrimSpace(addr[:i])
	}
	return admin.ActorFingerprint(addr, r.UserAgent())
}

// adminError maps controller outcomes to status codes: busy is 409,
// cooldown 429 with the wait hint, unknown scenario 400.
func (s *Server) adminError(w http.ResponseWriter, err error) {
	var cooldown *admin.CooldownError
	switch {
	case errors.Is(err, admin.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": err.Error()})
	case errors.As(err, &cooldown):
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"ok":              false,
			"error":           err.Error(),
			"retry_after_sec": cooldown.Remaining,
		})
	case errors.Is(err, admin.ErrUnknownScenario):
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
	default:
		s.log.Error("admin operation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal server error"})
	}
}

func (s *Server) handleAdminState(w http.ResponseWriter, r *http.Request) {
	state, err := s.ctrl.State(r.Context())
	if err != nil {
		s.adminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAdminScenario(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Scenario == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "scenario is required"})
		return
	}
	res, err := s.ctrl.SetScenario(r.Context(), body.Scenario, actorID(r))
	if err != nil {
		s.adminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.ctrl.Reset(r.Context(), actorID(r))
	if err != nil {
		s.adminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
