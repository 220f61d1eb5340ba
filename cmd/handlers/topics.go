package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"copydesk/internal/category"
	"copydesk/internal/config"
	"copydesk/internal/llm"
	"copydesk/internal/logger"
)

// NewTopicsCmd creates the topic stock management command
func NewTopicsCmd() *cobra.Command {
	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage the article topic stock",
		Long:  `Generate new article topics per category and inspect the unused stock.`,
	}

	topicsCmd.AddCommand(newTopicsGenerateCmd())
	topicsCmd.AddCommand(newTopicsStockCmd())

	return topicsCmd
}

func newTopicsGenerateCmd() *cobra.Command {
	var (
		categoryKey string
		count       int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store new topics for a category",
		Long: `Run the batch topic pipeline: generate candidate titles, validate them
against category keyword rules, reject duplicates, and store the survivors.

Examples:
  copydesk topics generate --category meta-ads --count 30
  copydesk topics generate --category faq`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopicsGenerate(cmd, categoryKey, count)
		},
	}

	cmd.Flags().StringVarP(&categoryKey, "category", "c", "", fmt.Sprintf("topic category (%s)", strings.Join(category.Keys(), ", ")))
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of topics to add (default from config: 25)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runTopicsGenerate(cmd *cobra.Command, categoryKey string, count int) error {
	if _, err := category.Get(categoryKey); err != nil {
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

	repo := newTopicRepo(cfg, recordsClient)
	orc := newOrchestrator(cfg, llmClient, repo, newUsageRecorder(cfg, recordsClient))

	fmt.Printf("Generating topics for %s...\n", categoryKey)
	report, err := orc.Run(cmd.Context(), categoryKey, count)
	if err != nil {
		// Earlier batches may have landed; show the partial tally.
		fmt.Fprintf(os.Stderr, "Run failed after %d added: %v\n", report.Added, err)
		return err
	}

	fmt.Printf("\nDone: %d/%d topics added over %d batches\n", report.Added, report.Requested, report.Batches)
	fmt.Printf("  generated: %d, valid: %d, invalid: %d, duplicate: %d\n",
		report.Generated, report.Valid, report.Invalid, report.Duplicate)
	fmt.Printf("  current stock: %d\n", report.CurrentStock)
	if len(report.InvalidTopics) > 0 {
		fmt.Printf("  rejected samples: %s\n", strings.Join(report.InvalidTopics, " | "))
	}
	if len(report.DuplicateTopics) > 0 {
		fmt.Printf("  duplicate samples: %s\n", strings.Join(report.DuplicateTopics, " | "))
	}

	if n := newNotifier(cfg); n != nil {
		n.SendBatchReport(cmd.Context(), report)
	}
	return nil
}

func newTopicsStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Show the unused topic count per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			recordsClient, err := newRecordsClient(cfg)
			if err != nil {
				return err
			}
			repo := newTopicRepo(cfg, recordsClient)

			fmt.Println("Topic stock")
			fmt.Println("===========")
			total := 0
			for _, key := range category.Keys() {
				count, err := repo.CountUnused(cmd.Context(), key)
				if err != nil {
					logger.Warn("Failed to count stock", "category", key, "error", err.Error())
					fmt.Printf("  %-16s ?\n", key)
					continue
				}
				total += count
				fmt.Printf("  %-16s %d\n", key, count)
			}
			fmt.Printf("  %-16s %d\n", "total", total)
			return nil
		},
	}
}
