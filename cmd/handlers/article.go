package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"copydesk/internal/category"
	"copydesk/internal/config"
	"copydesk/internal/content"
	"copydesk/internal/core"
	"copydesk/internal/llm"
	"copydesk/internal/logger"
	"copydesk/internal/publish"
	"copydesk/internal/topics"
)

// NewArticleCmd creates the article drafting command
func NewArticleCmd() *cobra.Command {
	var (
		categoryKey string
		title       string
		noThumbnail bool
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "article",
		Short: "Draft a full article from the topic stock",
		Long: `Draft one article end to end: consume the next pending topic (or an
explicit title), research SEO keywords, generate the body, description and
tags, render a thumbnail, and store the draft in the record store.

Examples:
  # Draft from the next pending meta-ads topic
  copydesk article --category meta-ads

  # Draft a specific title without a thumbnail
  copydesk article --category faq --title "메타 광고 계정이 비활성화되는 이유" --no-thumbnail`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArticle(cmd.Context(), categoryKey, title, !noThumbnail, outputDir)
		},
	}

	cmd.Flags().StringVarP(&categoryKey, "category", "c", "", "topic category")
	cmd.Flags().StringVarP(&title, "title", "t", "", "explicit title (skips the topic stock)")
	cmd.Flags().BoolVar(&noThumbnail, "no-thumbnail", false, "skip thumbnail generation")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "also write the draft as markdown to this directory")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runArticle(ctx context.Context, categoryKey, title string, withThumbnail bool, outputDir string) error {
	cat, err := category.Get(categoryKey)
	if err != nil {
		return err
	}

	cfg := config.Get()
	recordsClient, err := newRecordsClient(cfg)
	if err != nil {
		return err
	}
	llmClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		return err
	}

	topicRepo := newTopicRepo(cfg, recordsClient)
	contentRepo := newContentRepo(cfg, recordsClient)
	gen := content.NewGenerator(llmClient, content.DefaultGeneratorOptions())
	recorder := newUsageRecorder(cfg, recordsClient)

	var totalTokens int64
	var topicID string

	// 1. Resolve the title.
	if title == "" {
		topic, err := topicRepo.NextPending(ctx, categoryKey)
		if err != nil {
			return fmt.Errorf("no pending topic for %s: %w", categoryKey, err)
		}
		title = topic.Title
		topicID = topic.ID
	}
	fmt.Printf("[1/7] Title: %s\n", title)

	// 2. Duplicate guard against recent titles. Fails open: a check error
	// never blocks drafting.
	recent, err := topicRepo.ListRecentTitles(ctx, categoryKey, cfg.Pipeline.DedupWindowDuration())
	if err != nil {
		logger.Warn("Failed to load recent titles, skipping duplicate check", "error", err.Error())
	} else if verdict := topics.NewDuplicateChecker(llmClient).Check(ctx, title, recent); verdict.IsDuplicate {
		return fmt.Errorf("title duplicates a recent topic (%s): %s", verdict.SimilarTo, verdict.Reason)
	}
	fmt.Println("[2/7] Duplicate check passed")

	// 3. SEO keyword research (search grounded, degrades to empty).
	keywords, tokens := gen.ResearchKeywords(ctx, title, cat)
	totalTokens += tokens
	fmt.Printf("[3/7] Keywords: %s\n", keywords)

	// 4. Body.
	body, tokens, err := gen.GenerateBody(ctx, title, cat)
	totalTokens += tokens
	if err != nil {
		return fmt.Errorf("body generation failed: %w", err)
	}
	fmt.Printf("[4/7] Body generated (%d chars)\n", len([]rune(body)))

	// 5. Description and tags.
	description, tokens := gen.Description(ctx, title, body)
	totalTokens += tokens
	tags, tokens := gen.Tags(ctx, title, cat)
	totalTokens += tokens
	fmt.Printf("[5/7] Description and tags ready\n")

	// 6. Thumbnail.
	draft := core.Content{
		Title:       title,
		Body:        body,
		Description: description,
		Category:    categoryKey,
		Tags:        tags,
		SEOKeywords: keywords,
		Status:      core.ContentStatusDraft,
	}
	slug := publish.Slug(title, uuid.NewString())
	if withThumbnail {
		draft.ThumbnailURL = newThumbnailer(cfg, llmClient).Generate(ctx, title, slug)
		fmt.Printf("[6/7] Thumbnail: %s\n", draft.ThumbnailURL)
	} else {
		fmt.Println("[6/7] Thumbnail skipped")
	}

	// 7. Persist.
	saved, err := contentRepo.Insert(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	if topicID != "" {
		if err := topicRepo.MarkUsed(ctx, topicID); err != nil {
			logger.Warn("Failed to mark topic used", "id", topicID, "error", err.Error())
		}
	}
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}
	if outputDir != "" {
		if path, err := publish.WriteMarkdown(saved, outputDir, slug); err != nil {
			logger.Warn("Failed to write markdown draft", "error", err.Error())
		} else {
			fmt.Printf("       Draft written to %s\n", path)
		}
	}
	fmt.Printf("[7/7] Draft stored: %s\n", saved.ID)

	if err := recorder.Add(ctx, core.UsageSummary{ContentCount: 1, TotalTokens: totalTokens}); err != nil {
		logger.Warn("Failed to record usage", "error", err.Error())
	}
	fmt.Printf("Tokens used: %d\n", totalTokens)
	return nil
}
