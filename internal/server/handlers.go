package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse is the service status payload.
type StatusResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{
		Service: "copydesk",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleUsage handles GET /api/admin/usage
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Usage == nil {
		s.respondError(w, http.StatusServiceUnavailable, "usage tracking is not configured")
		return
	}

	if r.URL.Query().Get("history") != "" {
		history, err := s.deps.Usage.History(r.Context(), 12)
		if err != nil {
			s.log.Error("Failed to load usage history", "error", err.Error())
			s.respondError(w, http.StatusBadGateway, "failed to load usage history")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"months": history})
		return
	}

	summary, err := s.deps.Usage.Current(r.Context())
	if err != nil {
		s.log.Error("Failed to load usage", "error", err.Error())
		s.respondError(w, http.StatusBadGateway, "failed to load usage")
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err.Error())
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
