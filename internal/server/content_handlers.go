package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"copydesk/internal/core"
	"copydesk/internal/publish"
)

// ContentListResponse wraps a content listing.
type ContentListResponse struct {
	Contents []core.Content `json:"contents"`
	Count    int            `json:"count"`
}

// handleListContents handles GET /api/admin/contents
func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contents == nil {
		s.respondError(w, http.StatusServiceUnavailable, "content store is not configured")
		return
	}

	status := core.ContentStatus(r.URL.Query().Get("status"))
	contents, err := s.deps.Contents.List(r.Context(), r.URL.Query().Get("category"), status)
	if err != nil {
		s.log.Error("Failed to list contents", "error", err.Error())
		s.respondError(w, http.StatusBadGateway, "failed to list contents")
		return
	}

	s.respondJSON(w, http.StatusOK, ContentListResponse{
		Contents: contents,
		Count:    len(contents),
	})
}

// handleGetContent handles GET /api/admin/contents/{id}
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contents == nil {
		s.respondError(w, http.StatusServiceUnavailable, "content store is not configured")
		return
	}

	content, err := s.deps.Contents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "content not found")
		return
	}
	s.respondJSON(w, http.StatusOK, content)
}

// handlePreviewContent handles GET /api/admin/contents/{id}/preview and
// renders the markdown body as standalone HTML for editorial review.
func (s *Server) handlePreviewContent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contents == nil {
		s.respondError(w, http.StatusServiceUnavailable, "content store is not configured")
		return
	}

	content, err := s.deps.Contents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "content not found")
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML([]byte(content.Body), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!DOCTYPE html><html lang=\"ko\"><head><meta charset=\"utf-8\"><title>"))
	_, _ = w.Write([]byte(content.Title))
	_, _ = w.Write([]byte("</title></head><body><article>"))
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("</article></body></html>"))
}

// PublishContentRequest is the POST /api/admin/contents/{id}/publish body.
type PublishContentRequest struct {
	WithThumbnail bool `json:"withThumbnail"`
}

// handlePublishContent handles POST /api/admin/contents/{id}/publish
func (s *Server) handlePublishContent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Publisher == nil {
		s.respondError(w, http.StatusServiceUnavailable, "publishing is not configured")
		return
	}

	var req PublishContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.deps.Publisher.Publish(r.Context(), chi.URLParam(r, "id"), publish.Options{
		SiteURL:       s.siteURL,
		WithThumbnail: req.WithThumbnail,
	})
	if err != nil {
		s.log.Error("Publish failed", "id", chi.URLParam(r, "id"), "error", err.Error())
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}
