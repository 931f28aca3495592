package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aperturesearch/portfolio/internal/config"
	"github.com/aperturesearch/portfolio/internal/crm"
	"github.com/aperturesearch/portfolio/internal/llm"
	"github.com/aperturesearch/portfolio/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API for portfolio generation.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *llm.Stats
	model        string
	log          *slog.Logger
	cfg          config.Config

	// newPublisher builds the CRM publisher for one publish request; a
	// seam so tests can point it at a fake Attio.
	newPublisher func(apiKey string) *crm.Publisher
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, stats *llm.Stats, model string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		model:        model,
		log:          log,
		cfg:          cfg,
	}
	s.newPublisher = func(apiKey string) *crm.Publisher {
		return crm.NewPublisher(crm.NewClient(crm.DefaultBaseURL, apiKey), cfg.AttioWorkspace, log)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Post("/api/portfolio", s.handleCreateRun)
		r.Get("/api/portfolio/{runID}", s.handleRunStatus)
		r.Post("/api/portfolio/{runID}/sections/{sectionID}/regenerate", s.handleRegenerateSection)
		r.Put("/api/portfolio/{runID}/sections/{sectionID}", s.handleEditSection)
		r.Get("/api/portfolio/{runID}/markdown", s.handleMarkdown)
		r.Post("/api/portfolio/{runID}/publish", s.handlePublish)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.model,
		"stats": s.stats.Snapshot(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
