// Package api implements the minimal HTTP ingress stub in front of the
// job producer: POST /jobs to submit an address list, GET /jobs/{id} to
// poll its progress. The real ingress (file upload parsing, auth) is
// out of scope; this package exists so a caller has a concrete contract
// to hit.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"mailscout/internal/producer"
)

// Handler serves the job-submission and job-status endpoints.
type Handler struct {
	producer *producer.Producer
}

// NewHandler builds a Handler backed by p.
func NewHandler(p *producer.Producer) *Handler {
	return &Handler{producer: p}
}

// RegisterRoutes registers all API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.HandleSubmit)
	mux.HandleFunc("/jobs/", h.HandleStatus)
}

func sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type submitRequest struct {
	Filename string   `json:"filename"`
	Emails   []string `json:"emails"`
}

type submitResponse struct {
	JobID  string `json:"job_id"`
	Total  int    `json:"total"`
	Chunks int    `json:"chunks"`
}

// HandleSubmit accepts a POST of an address list and enqueues a job.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Emails) == 0 {
		sendError(w, http.StatusBadRequest, "emails must not be empty")
		return
	}

	result, err := h.producer.Submit(r.Context(), req.Filename, req.Emails)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(submitResponse{
		JobID:  result.JobID,
		Total:  result.Total,
		Chunks: result.Chunks,
	})
}

type statusResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Chunks    int    `json:"chunks"`
}

// HandleStatus reports a job's processing progress.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" {
		sendError(w, http.StatusBadRequest, "job id is required")
		return
	}

	status, ok, err := h.producer.Status(r.Context(), jobID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to load job status")
		return
	}
	if !ok {
		sendError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusResponse{
		JobID:     jobID,
		Status:    string(status.Status),
		Processed: status.Processed,
		Total:     status.Total,
		Chunks:    status.Chunks,
	})
}
