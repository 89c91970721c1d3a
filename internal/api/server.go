package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/MikeSquared-Agency/quill/internal/recorder"
)

type Server struct {
	router  *chi.Mux
	port    int
	lastRun func() *recorder.Report
	trigger func()
}

// NewServer builds the serve-mode HTTP surface. lastRun returns the most
// recent run's report (nil before the first run); trigger requests an
// on-demand sync and must not block.
func NewServer(port int, lastRun func() *recorder.Report, trigger func()) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		lastRun: lastRun,
		trigger: trigger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/quill/status", s.status)
	router.Post("/api/v1/quill/sync", s.sync)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"agent": "quill"}
	if report := s.lastRun(); report != nil {
		resp["last_run"] = map[string]any{
			"started_at":  report.StartedAt,
			"finished_at": report.FinishedAt,
			"considered":  report.Considered(),
			"recorded":    report.Recorded(),
			"skipped":     report.Skipped(),
			"failed":      report.Failed(),
		}
	} else {
		resp["last_run"] = nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	s.trigger()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "sync requested"})
}
