// Package server exposes the admin and public HTTP API: topic batch
// triggers, usage reporting, content publishing and lead capture.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"copydesk/internal/config"
	"copydesk/internal/core"
	"copydesk/internal/logger"
	"copydesk/internal/publish"
)

// TopicService runs topic batches and reports stock levels.
type TopicService interface {
	Run(ctx context.Context, categoryKey string, targetCount int) (core.BatchReport, error)
}

// TopicStockStore exposes the stock counter the admin endpoints read.
type TopicStockStore interface {
	CountUnused(ctx context.Context, categoryKey string) (int, error)
}

// ContentStore is the content surface the server reads and publishes from.
type ContentStore interface {
	Get(ctx context.Context, id string) (core.Content, error)
	List(ctx context.Context, categoryKey string, status core.ContentStatus) ([]core.Content, error)
}

// Publisher publishes a draft content record.
type Publisher interface {
	Publish(ctx context.Context, id string, opts publish.Options) (publish.Result, error)
}

// UsageReader returns monthly usage counters.
type UsageReader interface {
	Current(ctx context.Context) (core.UsageSummary, error)
	History(ctx context.Context, limit int) ([]core.UsageSummary, error)
}

// LeadStore is the CRM surface behind the lead and contract endpoints.
type LeadStore interface {
	CreateLead(ctx context.Context, lead core.Lead) (core.Lead, error)
	ListLeads(ctx context.Context, status core.LeadStatus, limit int) ([]core.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status core.LeadStatus) (core.Lead, error)
	CreateContract(ctx context.Context, contract core.Contract) (core.Contract, error)
	ListContracts(ctx context.Context, status core.ContractStatus, limit int) ([]core.Contract, error)
	UpdateContractStatus(ctx context.Context, id string, status core.ContractStatus) (core.Contract, error)
}

// Notifier receives fire-and-forget operational notifications.
type Notifier interface {
	SendLeadNotification(ctx context.Context, lead core.Lead)
	SendBatchReport(ctx context.Context, report core.BatchReport)
}

// Deps bundles the services the server routes to. Nil services disable
// their endpoints with 503 rather than panicking.
type Deps struct {
	Topics     TopicService
	TopicStock TopicStockStore
	Contents   ContentStore
	Publisher  Publisher
	Usage      UsageReader
	CRM        LeadStore
	Notifier   Notifier
}

// Server represents the HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	siteURL    string
	log        *slog.Logger
	started    time.Time
}

// New creates a new HTTP server instance.
func New(deps Deps, cfg config.Server, siteURL string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		deps:    deps,
		config:  cfg,
		siteURL: siteURL,
		log:     logger.Get(),
		started: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Batch generation can run for minutes; the write timeout on the
	// http.Server is disabled for the same reason.
	s.router.Use(middleware.Timeout(10 * time.Minute))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Route("/api", func(r chi.Router) {
		// Public lead capture from landing pages.
		r.Post("/leads", s.handleCreateLead)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireCron)

			r.Post("/topics/generate", s.handleGenerateTopics)
			r.Get("/topics/generate", s.handleTopicStock)

			r.Get("/usage", s.handleUsage)

			r.Route("/contents", func(r chi.Router) {
				r.Get("/", s.handleListContents)
				r.Get("/{id}", s.handleGetContent)
				r.Get("/{id}/preview", s.handlePreviewContent)
				r.Post("/{id}/publish", s.handlePublishContent)
			})

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", s.handleListLeads)
				r.Patch("/{id}/status", s.handleUpdateLeadStatus)
			})

			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", s.handleListContracts)
				r.Post("/", s.handleCreateContract)
				r.Patch("/{id}/status", s.handleUpdateContractStatus)
			})
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
