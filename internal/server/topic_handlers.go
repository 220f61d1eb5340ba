package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"copydesk/internal/category"
	"copydesk/internal/core"
)

// GenerateTopicsRequest is the POST /api/admin/topics/generate body.
// Both fields may also arrive as query parameters for scheduler triggers
// that cannot send a body.
type GenerateTopicsRequest struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GenerateTopicsResponse wraps a batch report for the scheduler.
type GenerateTopicsResponse struct {
	Success         bool     `json:"success"`
	Category        string   `json:"category"`
	Requested       int      `json:"requested"`
	Batches         int      `json:"batches"`
	Generated       int      `json:"generated"`
	Valid           int      `json:"valid"`
	Invalid         int      `json:"invalid"`
	Duplicate       int      `json:"duplicate"`
	Added           int      `json:"added"`
	CurrentStock    int      `json:"currentStock"`
	InvalidTopics   []string `json:"invalidTopics"`
	DuplicateTopics []string `json:"duplicateTopics"`
	Error           string   `json:"error,omitempty"`
}

// handleGenerateTopics handles POST /api/admin/topics/generate
func (s *Server) handleGenerateTopics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Topics == nil {
		s.respondError(w, http.StatusServiceUnavailable, "topic generation is not configured")
		return
	}

	var req GenerateTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category == "" {
		req.Category = r.URL.Query().Get("category")
	}
	if req.Count == 0 {
		req.Count, _ = strconv.Atoi(r.URL.Query().Get("count"))
	}

	if _, err := category.Get(req.Category); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.deps.Topics.Run(r.Context(), req.Category, req.Count)
	resp := toGenerateResponse(report)
	if err != nil {
		s.log.Error("Topic batch run failed", "category", req.Category, "error", err.Error())
		resp.Error = err.Error()
		// Partial batches may already be persisted; report what landed.
		s.respondJSON(w, http.StatusInternalServerError, resp)
		return
	}

	if s.deps.Notifier != nil {
		s.deps.Notifier.SendBatchReport(r.Context(), report)
	}

	resp.Success = true
	s.respondJSON(w, http.StatusOK, resp)
}

// handleTopicStock handles GET /api/admin/topics/generate. Without a
// category it reports overall stock per category; with one it reports that
// category's unused count.
func (s *Server) handleTopicStock(w http.ResponseWriter, r *http.Request) {
	if s.deps.TopicStock == nil {
		s.respondError(w, http.StatusServiceUnavailable, "topic store is not configured")
		return
	}

	key := r.URL.Query().Get("category")
	if key != "" {
		if _, err := category.Get(key); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		count, err := s.deps.TopicStock.CountUnused(r.Context(), key)
		if err != nil {
			s.log.Error("Failed to count topic stock", "category", key, "error", err.Error())
			s.respondError(w, http.StatusBadGateway, "failed to count topic stock")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{
			"category":    key,
			"unusedCount": count,
		})
		return
	}

	stock := make(map[string]int)
	for _, k := range category.Keys() {
		count, err := s.deps.TopicStock.CountUnused(r.Context(), k)
		if err != nil {
			s.log.Warn("Failed to count topic stock", "category", k, "error", err.Error())
			continue
		}
		stock[k] = count
	}

	var usage any
	if s.deps.Usage != nil {
		if summary, err := s.deps.Usage.Current(r.Context()); err == nil {
			usage = summary
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"currentStock":        stock,
		"availableCategories": category.Keys(),
		"usage":               usage,
	})
}

func toGenerateResponse(report core.BatchReport) GenerateTopicsResponse {
	invalid := report.InvalidTopics
	if invalid == nil {
		invalid = []string{}
	}
	duplicate := report.DuplicateTopics
	if duplicate == nil {
		duplicate = []string{}
	}
	return GenerateTopicsResponse{
		Category:        report.Category,
		Requested:       report.Requested,
		Batches:         report.Batches,
		Generated:       report.Generated,
		Valid:           report.Valid,
		Invalid:         report.Invalid,
		Duplicate:       report.Duplicate,
		Added:           report.Added,
		CurrentStock:    report.CurrentStock,
		InvalidTopics:   invalid,
		DuplicateTopics: duplicate,
	}
}
