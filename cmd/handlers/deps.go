package handlers

import (
	"fmt"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/content"
	"copydesk/internal/crm"
	"copydesk/internal/llm"
	"copydesk/internal/messaging"
	"copydesk/internal/publish"
	"copydesk/internal/records"
	"copydesk/internal/store"
	"copydesk/internal/topics"
	"copydesk/internal/usage"
	"copydesk/internal/visual"
)

// newRecordsClient builds the record store client from config.
func newRecordsClient(cfg *config.Config) (*records.Client, error) {
	rc := cfg.Records
	if rc.APIKey == "" || rc.BaseID == "" {
		return nil, fmt.Errorf("record store is not configured. Set records.api_key and records.base_id (or RECORDS_API_KEY / RECORDS_BASE_ID)")
	}
	timeout := 30 * time.Second
	if rc.Timeout != "" {
		if d, err := time.ParseDuration(rc.Timeout); err == nil {
			timeout = d
		}
	}
	return records.NewClient(rc.APIKey, rc.BaseID, rc.BaseURL, timeout), nil
}

// newTopicRepo wires the topic repository with its local title cache. A
// cache open failure degrades to uncached reads.
func newTopicRepo(cfg *config.Config, client *records.Client) *topics.Repo {
	var cache *store.Store
	if cfg.Cache.Directory != "" {
		s, err := store.NewStore(cfg.Cache.Directory)
		if err == nil {
			cache = s
		}
	}
	return topics.NewRepo(client, cfg.Records.Tables.Topics, cache, cfg.Cache.TTLDuration())
}

// newOrchestrator assembles the full topic batch pipeline.
func newOrchestrator(cfg *config.Config, llmClient *llm.Client, repo *topics.Repo, recorder *usage.Recorder) *topics.Orchestrator {
	p := cfg.Pipeline

	genOpts := topics.DefaultGeneratorOptions()
	genOpts.MinTitleRunes = p.MinTitleRunes
	genOpts.MaxTitleRunes = p.MaxTitleRunes
	if p.ExistingCap > 0 {
		genOpts.ExistingCap = p.ExistingCap
	}

	orcOpts := topics.DefaultOrchestratorOptions()
	if p.BatchSize > 0 {
		orcOpts.BatchSize = p.BatchSize
	}
	orcOpts.BatchDelay = p.BatchDelayDuration()
	if p.MinCount > 0 {
		orcOpts.MinCount = p.MinCount
	}
	if p.MaxCount > 0 {
		orcOpts.MaxCount = p.MaxCount
	}

	return topics.NewOrchestrator(
		topics.NewGenerator(llmClient, genOpts),
		topics.NewDuplicateChecker(llmClient),
		topics.NewValidator(p.MinTitleRunes, p.MaxTitleRunes),
		repo,
		recorder,
		orcOpts,
	)
}

// newThumbnailer builds the thumbnail generator from asset config.
func newThumbnailer(cfg *config.Config, llmClient *llm.Client) *visual.Generator {
	a := cfg.Assets
	opts := visual.DefaultOptions()
	if a.OutputDirectory != "" {
		opts.OutputDirectory = a.OutputDirectory
	}
	if a.PublicPrefix != "" {
		opts.PublicPrefix = a.PublicPrefix
	}
	if a.FallbackPath != "" {
		opts.FallbackPath = a.FallbackPath
	}
	if a.Width > 0 {
		opts.Width = a.Width
	}
	if a.Height > 0 {
		opts.Height = a.Height
	}
	if a.JPEGQuality > 0 {
		opts.JPEGQuality = a.JPEGQuality
	}
	return visual.NewGenerator(llmClient, opts)
}

// newNotifier builds the Slack/Telegram notifier. Returns nil when no
// channel is configured so callers can skip notification wiring.
func newNotifier(cfg *config.Config) *messaging.Notifier {
	m := cfg.Messaging
	timeout := 10 * time.Second
	if m.Timeout != "" {
		if d, err := time.ParseDuration(m.Timeout); err == nil {
			timeout = d
		}
	}
	n := messaging.NewNotifier(
		messaging.SlackConfig{
			WebhookURL: m.Slack.WebhookURL,
			Username:   m.Slack.Username,
			IconEmoji:  m.Slack.IconEmoji,
		},
		messaging.TelegramConfig{
			BotToken: m.Telegram.BotToken,
			ChatID:   m.Telegram.ChatID,
		},
		timeout,
	)
	if !n.Enabled() {
		return nil
	}
	return n
}

func newUsageRecorder(cfg *config.Config, client *records.Client) *usage.Recorder {
	return usage.NewRecorder(client, cfg.Records.Tables.Usage)
}

func newContentRepo(cfg *config.Config, client *records.Client) *content.Repo {
	return content.NewRepo(client, cfg.Records.Tables.Contents)
}

func newCRMRepo(cfg *config.Config, client *records.Client) *crm.Repo {
	return crm.NewRepo(client, cfg.Records.Tables.Leads, cfg.Records.Tables.Contracts)
}

func newPublisher(cfg *config.Config, contents *content.Repo, thumbs *visual.Generator, recorder *usage.Recorder) *publish.Publisher {
	return publish.NewPublisher(contents, thumbs, recorder)
}
