package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aperturesearch/portfolio/internal/metrics"
	"github.com/aperturesearch/portfolio/internal/pipeline"
	"github.com/aperturesearch/portfolio/internal/portfolio"
	"github.com/go-chi/chi/v5"
)

type createRunRequest struct {
	portfolio.Inputs

	// Optional per-run overrides for the generation provider.
	Provider         string `json:"provider,omitempty"`
	GenerationAPIKey string `json:"generation_api_key,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CompanyName == "" || req.CompanyURL == "" || req.RoleTitle == "" {
		jsonError(w, "company_name, company_url, and role_title are required", http.StatusBadRequest)
		return
	}
	switch req.Provider {
	case "", "anthropic", "openai":
	default:
		jsonError(w, fmt.Sprintf("unknown provider %q", req.Provider), http.StatusBadRequest)
		return
	}

	run := pipeline.NewRun(req.Inputs)
	run.Provider = req.Provider
	run.APIKey = req.GenerationAPIKey

	if err := s.orchestrator.Submit(run); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"run_id":   run.ID,
		"status":   run.Status(),
		"poll_url": "/api/portfolio/" + run.ID,
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run.Snapshot())
}

func (s *Server) handleRegenerateSection(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if st := run.Status(); st == pipeline.StatusQueued || st == pipeline.StatusRunning {
		jsonError(w, "run is still generating", http.StatusConflict)
		return
	}
	sectionID := chi.URLParam(r, "sectionID")
	if err := s.orchestrator.Regenerate(run, sectionID); err != nil {
		code := http.StatusServiceUnavailable
		if _, ok := portfolio.ByID(sectionID); !ok {
			code = http.StatusNotFound
		}
		jsonError(w, err.Error(), code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"run_id":   run.ID,
		"section":  sectionID,
		"poll_url": "/api/portfolio/" + run.ID,
	})
}

type editSectionRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditSection(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if st := run.Status(); st == pipeline.StatusQueued || st == pipeline.StatusRunning {
		jsonError(w, "run is still generating", http.StatusConflict)
		return
	}
	sectionID := chi.URLParam(r, "sectionID")
	if _, ok := portfolio.ByID(sectionID); !ok {
		jsonError(w, fmt.Sprintf("unknown section %q", sectionID), http.StatusNotFound)
		return
	}

	var req editSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	run.SetSectionText(sectionID, req.Text)
	run.AddLog("manual edit: %s", sectionID)

	// An edited extraction input invalidates the stored metrics; recompute
	// from the current text. No provider call here, only the regex tier.
	if metrics.FeedsExtraction(sectionID) {
		run.SetMetrics(metrics.Extract(r.Context(), nil, s.log, run.PortfolioCopy()))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run.Snapshot())
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}

	md := run.Markdown()
	if r.URL.Query().Get("format") == "html" {
		html, err := portfolio.RenderHTML(md)
		if err != nil {
			jsonError(w, "render html: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}
