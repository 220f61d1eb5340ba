package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"copydesk/internal/config"
	"copydesk/internal/llm"
	"copydesk/internal/logger"
	"copydesk/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin and lead-capture HTTP server",
		Long: `Start the copydesk HTTP server.

The server provides:
  • Scheduler-facing topic batch endpoints under /api/admin (bearer protected)
  • Content listing, preview, and publish endpoints
  • Public lead capture at POST /api/leads
  • Health check and status endpoints

Examples:
  # Start server on the configured port
  copydesk serve

  # Start on a custom port
  copydesk serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	recordsClient, err := newRecordsClient(cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Usage:    newUsageRecorder(cfg, recordsClient),
		Contents: newContentRepo(cfg, recordsClient),
		CRM:      newCRMRepo(cfg, recordsClient),
	}
	if n := newNotifier(cfg); n != nil {
		deps.Notifier = n
	}

	topicRepo := newTopicRepo(cfg, recordsClient)
	deps.TopicStock = topicRepo

	// The LLM-backed services are optional: the server still serves CRM and
	// content reads when no API key is configured.
	llmClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		log.Warn("LLM client unavailable, generation endpoints disabled", "error", err.Error())
	} else {
		recorder := newUsageRecorder(cfg, recordsClient)
		deps.Topics = newOrchestrator(cfg, llmClient, topicRepo, recorder)
		deps.Publisher = newPublisher(cfg, newContentRepo(cfg, recordsClient), newThumbnailer(cfg, llmClient), recorder)
	}

	srv := server.New(deps, serverCfg, cfg.App.SiteURL)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err.Error())
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
