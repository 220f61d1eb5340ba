// Package usage tracks monthly pipeline counters in the record store, one
// record per calendar month keyed by "YYYY-MM".
package usage

import (
	"context"
	"fmt"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/records"
)

const (
	fieldMonth    = "Month"
	fieldTopics   = "TopicCount"
	fieldContents = "ContentCount"
	fieldPublish  = "PublishCount"
	fieldTokens   = "TotalTokens"
)

// Recorder accumulates usage counters in the record store.
type Recorder struct {
	client *records.Client
	table  string
	now    func() time.Time
}

// NewRecorder creates a usage recorder against the given table.
func NewRecorder(client *records.Client, table string) *Recorder {
	return &Recorder{client: client, table: table, now: time.Now}
}

// Month returns the current accounting period key.
func (r *Recorder) Month() string {
	return r.now().Format("2006-01")
}

// Add increments the current month's counters by the delta, creating the
// month record on first use. Reads and writes race under concurrent callers;
// the counters are operational telemetry, not billing, so last-write wins
// is acceptable.
func (r *Recorder) Add(ctx context.Context, delta core.UsageSummary) error {
	month := r.Month()
	current, rec, err := r.find(ctx, month)
	if err != nil {
		return err
	}

	fields := map[string]any{
		fieldMonth:    month,
		fieldTopics:   current.TopicCount + delta.TopicCount,
		fieldContents: current.ContentCount + delta.ContentCount,
		fieldPublish:  current.PublishCount + delta.PublishCount,
		fieldTokens:   current.TotalTokens + delta.TotalTokens,
	}

	if rec == nil {
		_, err = r.client.Create(ctx, r.table, []map[string]any{fields})
		if err != nil {
			return fmt.Errorf("failed to create usage record for %s: %w", month, err)
		}
		return nil
	}

	if _, err := r.client.Update(ctx, r.table, rec.ID, fields); err != nil {
		return fmt.Errorf("failed to update usage record for %s: %w", month, err)
	}
	return nil
}

// Current returns the current month's counters, zero-valued when the month
// has no record yet.
func (r *Recorder) Current(ctx context.Context) (core.UsageSummary, error) {
	summary, _, err := r.find(ctx, r.Month())
	return summary, err
}

// History returns up to limit months of counters, newest first.
func (r *Recorder) History(ctx context.Context, limit int) ([]core.UsageSummary, error) {
	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		SortField:  fieldMonth,
		SortDesc:   true,
		MaxRecords: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	out := make([]core.UsageSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toSummary(rec))
	}
	return out, nil
}

func (r *Recorder) find(ctx context.Context, month string) (core.UsageSummary, *records.Record, error) {
	formula := fmt.Sprintf("{%s} = '%s'", fieldMonth, records.EscapeFormulaString(month))
	recs, err := r.client.List(ctx, r.table, records.ListOptions{
		FilterByFormula: formula,
		MaxRecords:      1,
	})
	if err != nil {
		return core.UsageSummary{}, nil, fmt.Errorf("failed to look up usage record: %w", err)
	}
	if len(recs) == 0 {
		return core.UsageSummary{Month: month}, nil, nil
	}
	return toSummary(recs[0]), &recs[0], nil
}

func toSummary(rec records.Record) core.UsageSummary {
	return core.UsageSummary{
		Month:        rec.String(fieldMonth),
		TopicCount:   rec.Int(fieldTopics),
		ContentCount: rec.Int(fieldContents),
		PublishCount: rec.Int(fieldPublish),
		TotalTokens:  int64(rec.Int(fieldTokens)),
	}
}
