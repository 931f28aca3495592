package api

import (
	"encoding/json"
	"net/http"

	"github.com/aperturesearch/portfolio/internal/crm"
	"github.com/aperturesearch/portfolio/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type publishRequest struct {
	// Optional per-request CRM key; falls back to the server's.
	CRMAPIKey string `json:"crm_api_key,omitempty"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if st := run.Status(); st == pipeline.StatusQueued || st == pipeline.StatusRunning {
		jsonError(w, "run is still generating", http.StatusConflict)
		return
	}

	var req publishRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	apiKey := req.CRMAPIKey
	if apiKey == "" {
		apiKey = s.cfg.AttioAPIKey
	}
	if apiKey == "" {
		jsonError(w, "no CRM API key configured", http.StatusBadRequest)
		return
	}

	m, _ := run.Metrics()
	payload := crm.Payload{
		CompanyName: run.Inputs.CompanyName,
		CompanyURL:  run.Inputs.CompanyURL,
		RoleTitle:   run.Inputs.RoleTitle,
		Markdown:    run.Markdown(),
		Metrics:     m,
	}

	result, err := s.newPublisher(apiKey).Publish(r.Context(), payload)
	if err != nil {
		s.log.Error("publish failed", "run_id", run.ID, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	run.AddLog("published to CRM: %s", result.RecordID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
