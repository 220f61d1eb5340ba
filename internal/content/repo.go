package content

import (
	"context"
	"fmt"

	"copydesk/internal/core"
	"copydesk/internal/records"
)

// Field names in the record store's contents table.
const (
	fieldTitle        = "Title"
	fieldBody         = "Body"
	fieldDescription  = "Description"
	fieldCategory     = "Category"
	fieldTags         = "Tags"
	fieldSEOKeywords  = "SEOKeywords"
	fieldStatus       = "Status"
	fieldThumbnailURL = "ThumbnailURL"
	fieldPublishedURL = "PublishedURL"
)

// Repo persists articles in the record store.
type Repo struct {
	client *records.Client
	table  string
}

// NewRepo creates a content repository.
func NewRepo(client *records.Client, table string) *Repo {
	return &Repo{client: client, table: table}
}

// Insert persists a draft and returns it with its record ID set.
func (r *Repo) Insert(ctx context.Context, c core.Content) (core.Content, error) {
	created, err := r.client.Create(ctx, r.table, []map[string]any{toFields(c)})
	if err != nil {
		return core.Content{}, fmt.Errorf("insert content %q: %w", c.Title, err)
	}
	if len(created) == 0 {
		return core.Content{}, fmt.Errorf("insert content %q: no record returned", c.Title)
	}
	return toContent(created[0]), nil
}

// Update rewrites a content record's fields.
func (r *Repo) Update(ctx context.Context, c core.Content) (core.Content, error) {
	if c.ID == "" {
		return core.Content{}, fmt.Errorf("update content: missing record ID")
	}
	updated, err := r.client.Update(ctx, r.table, c.ID, toFields(c))
	if err != nil {
		return core.Content{}, err
	}
	return toContent(updated), nil
}

// Get fetches one article by record ID.
func (r *Repo) Get(ctx context.Context, id string) (core.Content, error) {
	rec, err := r.client.Get(ctx, r.table, id)
	if err != nil {
		return core.Content{}, err
	}
	return toContent(rec), nil
}

// List returns articles, optionally filtered by category and/or status.
func (r *Repo) List(ctx context.Context, categoryKey string, status core.ContentStatus) ([]core.Content, error) {
	var clauses []string
	if categoryKey != "" {
		clauses = append(clauses, fmt.Sprintf(`{%s} = "%s"`, fieldCategory, records.EscapeFormulaString(categoryKey)))
	}
	if status != "" {
		clauses = append(clauses, fmt.Sprintf(`{%s} = "%s"`, fieldStatus, status))
	}

	opts := records.ListOptions{SortField: fieldTitle}
	switch len(clauses) {
	case 1:
		opts.FilterByFormula = clauses[0]
	case 2:
		opts.FilterByFormula = fmt.Sprintf("AND(%s, %s)", clauses[0], clauses[1])
	}

	recs, err := r.client.List(ctx, r.table, opts)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}

	out := make([]core.Content, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toContent(rec))
	}
	return out, nil
}

func toFields(c core.Content) map[string]any {
	return map[string]any{
		fieldTitle:        c.Title,
		fieldBody:         c.Body,
		fieldDescription:  c.Description,
		fieldCategory:     c.Category,
		fieldTags:         c.Tags,
		fieldSEOKeywords:  c.SEOKeywords,
		fieldStatus:       string(c.Status),
		fieldThumbnailURL: c.ThumbnailURL,
		fieldPublishedURL: c.PublishedURL,
	}
}

func toContent(rec records.Record) core.Content {
	return core.Content{
		ID:           rec.ID,
		Title:        rec.String(fieldTitle),
		Body:         rec.String(fieldBody),
		Description:  rec.String(fieldDescription),
		Category:     rec.String(fieldCategory),
		Tags:         rec.String(fieldTags),
		SEOKeywords:  rec.String(fieldSEOKeywords),
		Status:       core.ContentStatus(rec.String(fieldStatus)),
		ThumbnailURL: rec.String(fieldThumbnailURL),
		PublishedURL: rec.String(fieldPublishedURL),
		CreatedAt:    rec.CreatedTime,
	}
}
