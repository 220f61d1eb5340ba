package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"copydesk/internal/core"
)

// CreateLeadRequest is the public POST /api/leads body.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// handleCreateLead handles POST /api/leads
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "lead capture is not configured")
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := s.deps.CRM.CreateLead(r.Context(), core.Lead{
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Email:   req.Email,
		Message: req.Message,
		Source:  req.Source,
	})
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.deps.Notifier != nil {
		// Notification must not extend the visitor's request latency.
		go func(lead core.Lead) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.deps.Notifier.SendLeadNotification(ctx, lead)
		}(lead)
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"lead":    lead,
	})
}

// handleListLeads handles GET /api/admin/leads
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "CRM is not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	leads, err := s.deps.CRM.ListLeads(r.Context(), core.LeadStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// handleUpdateLeadStatus handles PATCH /api/admin/leads/{id}/status
func (s *Server) handleUpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "CRM is not configured")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := s.deps.CRM.UpdateLeadStatus(r.Context(), chi.URLParam(r, "id"), core.LeadStatus(req.Status))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, lead)
}

// CreateContractRequest is the POST /api/admin/contracts body.
type CreateContractRequest struct {
	ClientID string `json:"clientId"`
	Plan     string `json:"plan"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// handleCreateContract handles POST /api/admin/contracts
func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "CRM is not configured")
		return
	}

	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contract := core.Contract{ClientID: req.ClientID, Plan: req.Plan}
	if req.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "startsAt must be RFC3339")
			return
		}
		contract.StartsAt = t
	}
	if req.EndsAt != "" {
		t, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "endsAt must be RFC3339")
			return
		}
		contract.EndsAt = t
	}

	created, err := s.deps.CRM.CreateContract(r.Context(), contract)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

// handleListContracts handles GET /api/admin/contracts
func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "CRM is not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	contracts, err := s.deps.CRM.ListContracts(r.Context(), core.ContractStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// handleUpdateContractStatus handles PATCH /api/admin/contracts/{id}/status
func (s *Server) handleUpdateContractStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.CRM == nil {
		s.respondError(w, http.StatusServiceUnavailable, "CRM is not configured")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contract, err := s.deps.CRM.UpdateContractStatus(r.Context(), chi.URLParam(r, "id"), core.ContractStatus(req.Status))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, contract)
}
