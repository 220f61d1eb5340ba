package topics

import (
	"context"
	"fmt"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/records"
	"copydesk/internal/store"
)

// Field names in the record store's topics table.
const (
	fieldTitle    = "Title"
	fieldCategory = "Category"
	fieldStatus   = "Status"
)

// Repo persists topics in the record store, with a local cache of full
// per-category title lists in front of the listing path.
type Repo struct {
	client   *records.Client
	table    string
	cache    *store.Store // nil disables caching
	cacheTTL time.Duration
}

// NewRepo creates a topic repository. cache may be nil.
func NewRepo(client *records.Client, table string, cache *store.Store, cacheTTL time.Duration) *Repo {
	return &Repo{
		client:   client,
		table:    table,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ListTitles returns every topic title in the category, any status. Used for
// cross-batch dedup, so staleness within the cache TTL is acceptable: the
// orchestrator re-checks its own in-memory list during a run.
func (r *Repo) ListTitles(ctx context.Context, categoryKey string) ([]string, error) {
	if r.cache != nil {
		if cached, err := r.cache.GetCachedTitles(categoryKey, r.cacheTTL); err == nil && cached != nil {
			return cached, nil
		}
	}

	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		FilterByFormula: fmt.Sprintf(`{%s} = "%s"`, fieldCategory, records.EscapeFormulaString(categoryKey)),
		Fields:          []string{fieldTitle},
	})
	if err != nil {
		return nil, fmt.Errorf("list topic titles for %s: %w", categoryKey, err)
	}

	titles := make([]string, 0, len(recs))
	for _, rec := range recs {
		if t := rec.String(fieldTitle); t != "" {
			titles = append(titles, t)
		}
	}

	if r.cache != nil {
		_ = r.cache.CacheTitles(categoryKey, titles)
	}
	return titles, nil
}

// ListRecentTitles returns titles created within the trailing window,
// bypassing the cache. Used for article-level dedup where freshness matters.
func (r *Repo) ListRecentTitles(ctx context.Context, categoryKey string, window time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-window).Format(time.RFC3339)
	formula := fmt.Sprintf(`AND({%s} = "%s", IS_AFTER(CREATED_TIME(), "%s"))`,
		fieldCategory, records.EscapeFormulaString(categoryKey), cutoff)

	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		FilterByFormula: formula,
		Fields:          []string{fieldTitle},
	})
	if err != nil {
		return nil, fmt.Errorf("list recent topic titles for %s: %w", categoryKey, err)
	}

	titles := make([]string, 0, len(recs))
	for _, rec := range recs {
		if t := rec.String(fieldTitle); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

// CountUnused returns the number of pending topics in the category.
func (r *Repo) CountUnused(ctx context.Context, categoryKey string) (int, error) {
	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		FilterByFormula: fmt.Sprintf(`AND({%s} = "%s", {%s} = "%s")`,
			fieldCategory, records.EscapeFormulaString(categoryKey),
			fieldStatus, core.TopicStatusPending),
		Fields: []string{fieldTitle},
	})
	if err != nil {
		return 0, fmt.Errorf("count unused topics for %s: %w", categoryKey, err)
	}
	return len(recs), nil
}

// Insert persists accepted titles as pending topics and returns how many were
// written. The underlying client chunks requests; earlier chunks stay
// persisted if a later one fails.
func (r *Repo) Insert(ctx context.Context, categoryKey string, titles []string) (int, error) {
	if len(titles) == 0 {
		return 0, nil
	}

	fields := make([]map[string]any, 0, len(titles))
	for _, t := range titles {
		fields = append(fields, map[string]any{
			fieldTitle:    t,
			fieldCategory: categoryKey,
			fieldStatus:   string(core.TopicStatusPending),
		})
	}

	created, err := r.client.Create(ctx, r.table, fields)
	if len(created) > 0 && r.cache != nil {
		inserted := make([]string, 0, len(created))
		for _, rec := range created {
			inserted = append(inserted, rec.String(fieldTitle))
		}
		_ = r.cache.AppendTitles(categoryKey, inserted)
	}
	if err != nil {
		return len(created), fmt.Errorf("insert topics for %s: %w", categoryKey, err)
	}
	return len(created), nil
}

// NextPending returns the oldest pending topic in the category.
func (r *Repo) NextPending(ctx context.Context, categoryKey string) (core.Topic, error) {
	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		FilterByFormula: fmt.Sprintf(`AND({%s} = "%s", {%s} = "%s")`,
			fieldCategory, records.EscapeFormulaString(categoryKey),
			fieldStatus, core.TopicStatusPending),
		SortField:  fieldTitle,
		MaxRecords: 1,
	})
	if err != nil {
		return core.Topic{}, fmt.Errorf("next pending topic for %s: %w", categoryKey, err)
	}
	if len(recs) == 0 {
		return core.Topic{}, fmt.Errorf("no pending topics in category %s", categoryKey)
	}
	return toTopic(recs[0]), nil
}

// MarkUsed transitions a topic to used after content generation consumed it.
func (r *Repo) MarkUsed(ctx context.Context, topicID string) error {
	_, err := r.client.Update(ctx, r.table, topicID, map[string]any{
		fieldStatus: string(core.TopicStatusUsed),
	})
	if err != nil {
		return fmt.Errorf("mark topic %s used: %w", topicID, err)
	}
	return nil
}

func toTopic(rec records.Record) core.Topic {
	return core.Topic{
		ID:        rec.ID,
		Category:  rec.String(fieldCategory),
		Title:     rec.String(fieldTitle),
		Status:    core.TopicStatus(rec.String(fieldStatus)),
		CreatedAt: rec.CreatedTime,
	}
}
