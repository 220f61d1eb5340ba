package topics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"copydesk/internal/category"
	"copydesk/internal/core"
	"copydesk/internal/logger"
)

// sampleCap limits how many rejected titles a report carries back for
// operator visibility.
const sampleCap = 10

// TitleGenerator produces candidate titles for a category.
type TitleGenerator interface {
	Generate(ctx context.Context, cat category.Category, count int, existingTitles []string) ([]string, int64, error)
}

// DupChecker judges a candidate against a comparison list.
type DupChecker interface {
	Check(ctx context.Context, title string, existing []string) core.DuplicateResult
}

// TopicStore is the persistence surface the orchestrator needs.
type TopicStore interface {
	ListTitles(ctx context.Context, categoryKey string) ([]string, error)
	Insert(ctx context.Context, categoryKey string, titles []string) (int, error)
	CountUnused(ctx context.Context, categoryKey string) (int, error)
}

// UsageRecorder receives best-effort usage increments.
type UsageRecorder interface {
	Add(ctx context.Context, delta core.UsageSummary) error
}

// OrchestratorOptions tunes a batch run.
type OrchestratorOptions struct {
	BatchSize  int           // Titles requested per model call (default 25)
	BatchDelay time.Duration // Fixed sleep between batches (default 2s)
	MinCount   int           // Lower clamp for requested totals (default 10)
	MaxCount   int           // Upper clamp for requested totals (default 100)
}

// DefaultOrchestratorOptions returns the production defaults.
func DefaultOrchestratorOptions() OrchestratorOptions {
	return OrchestratorOptions{
		BatchSize:  25,
		BatchDelay: 2 * time.Second,
		MinCount:   10,
		MaxCount:   100,
	}
}

// Orchestrator runs topic generation in fixed-size sequential batches,
// filtering each batch through validation and duplicate checking before
// persisting survivors.
//
// Batches are intentionally serial with a fixed inter-batch sleep to respect
// upstream rate limits. Writes are append-only and per-batch: a failure in a
// later batch leaves earlier batches persisted (at-least-once). Concurrent
// runs against the same category are not mutually excluded.
type Orchestrator struct {
	generator TitleGenerator
	checker   DupChecker
	validator *Validator
	store     TopicStore
	usage     UsageRecorder // nil disables usage accounting
	opts      OrchestratorOptions
	sleep     func(time.Duration) // Injectable for tests
	log       *slog.Logger
}

// NewOrchestrator wires a batch orchestrator.
func NewOrchestrator(gen TitleGenerator, checker DupChecker, validator *Validator, store TopicStore, usage UsageRecorder, opts OrchestratorOptions) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts = DefaultOrchestratorOptions()
	}
	return &Orchestrator{
		generator: gen,
		checker:   checker,
		validator: validator,
		store:     store,
		usage:     usage,
		opts:      opts,
		sleep:     time.Sleep,
		log:       logger.Get(),
	}
}

// Batches returns ceil(target / batch size) after clamping target.
func (o *Orchestrator) Batches(target int) int {
	target = o.clamp(target)
	return (target + o.opts.BatchSize - 1) / o.opts.BatchSize
}

func (o *Orchestrator) clamp(target int) int {
	if target < o.opts.MinCount {
		return o.opts.MinCount
	}
	if target > o.opts.MaxCount {
		return o.opts.MaxCount
	}
	return target
}

// Run generates up to targetCount accepted topics for the category and
// returns a per-run report. Persisted topics from completed batches survive
// any later failure.
func (o *Orchestrator) Run(ctx context.Context, categoryKey string, targetCount int) (core.BatchReport, error) {
	cat, err := category.Get(categoryKey)
	if err != nil {
		return core.BatchReport{}, err
	}

	target := o.clamp(targetCount)
	batches := o.Batches(target)

	report := core.BatchReport{
		Category:  categoryKey,
		Requested: target,
		Batches:   batches,
	}

	// One upfront load; the list grows in memory as batches accept titles so
	// intra-run duplicates are caught without refetching.
	existing, err := o.store.ListTitles(ctx, categoryKey)
	if err != nil {
		return report, fmt.Errorf("load existing titles: %w", err)
	}

	var totalTokens int64

	for batch := 0; batch < batches && report.Added < target; batch++ {
		want := o.opts.BatchSize
		if remaining := target - report.Added; remaining < want {
			want = remaining
		}

		titles, tokens, err := o.generator.Generate(ctx, cat, want, existing)
		if err != nil {
			return report, fmt.Errorf("batch %d: %w", batch+1, err)
		}
		totalTokens += tokens
		report.Generated += len(titles)

		var accepted []string
		for _, title := range titles {
			if len(accepted) >= want {
				break
			}
			if !o.validator.Validate(title, cat) {
				report.Invalid++
				if len(report.InvalidTopics) < sampleCap {
					report.InvalidTopics = append(report.InvalidTopics, title)
				}
				continue
			}
			report.Valid++

			verdict := o.checker.Check(ctx, title, existing)
			if verdict.IsDuplicate {
				report.Duplicate++
				if len(report.DuplicateTopics) < sampleCap {
					report.DuplicateTopics = append(report.DuplicateTopics, title)
				}
				continue
			}

			existing = append(existing, title)
			accepted = append(accepted, title)
		}

		added, err := o.store.Insert(ctx, categoryKey, accepted)
		report.Added += added
		if err != nil {
			return report, fmt.Errorf("batch %d persist: %w", batch+1, err)
		}

		o.log.Info("Topic batch complete",
			"category", categoryKey,
			"batch", batch+1,
			"generated", len(titles),
			"accepted", len(accepted),
		)

		if batch < batches-1 && report.Added < target {
			o.sleep(o.opts.BatchDelay)
		}
	}

	if stock, err := o.store.CountUnused(ctx, categoryKey); err == nil {
		report.CurrentStock = stock
	} else {
		o.log.Warn("Stock count failed after run", "category", categoryKey, "error", err.Error())
	}

	if o.usage != nil && report.Added > 0 {
		delta := core.UsageSummary{TopicCount: report.Added, TotalTokens: totalTokens}
		if err := o.usage.Add(ctx, delta); err != nil {
			o.log.Warn("Usage accounting failed", "error", err.Error())
		}
	}

	return report, nil
}
