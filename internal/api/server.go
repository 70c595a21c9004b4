// HTTP surface: list endpoints, SSE stream, health, admin controls, and
// prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fusionops-sim/internal/admin"
	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/config"
)

// Server serves the dashboard API.
type Server struct {
	cat       *catalog.Catalog
	ctrl      *admin.Controller
	stream    config.Stream
	cors      []string
	log       *slog.Logger
	startedAt time.Time
	handler   http.Handler
}

// NewServer wires all routes and middleware.
func NewServer(cat *catalog.Catalog, ctrl *admin.Controller, cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cat:       cat,
		ctrl:      ctrl,
		stream:    cfg.Stream,
		cors:      cfg.CORSOrigins,
		log:       log,
		startedAt: time.Now().UTC(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/assets", s.handleAssets)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/admin/state", s.handleAdminState)
	mux.HandleFunc("POST /api/admin/scenario", s.handleAdminScenario)
	mux.HandleFunc("POST /api/admin/reset", s.handleAdminReset)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.handler = s.withCORS(s.withRecover(mux))
	return s
}

// Handler exposes the composed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

// withRecover is the outward-facing catch-all: unexpected failures become a
// generic 500 instead of killing the process.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("unhandled panic in handler", "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"ok":    false,
					"error": "internal server error",
					"path":  r.URL.Path,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cors))
	for _, o := range s.cors {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
