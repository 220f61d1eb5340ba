// Package publish moves drafted articles into the published state: optional
// thumbnail generation, record updates, a markdown export with front matter,
// and usage accounting.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/logger"
)

// ContentStore is the record-side surface the publisher needs.
type ContentStore interface {
	Get(ctx context.Context, id string) (core.Content, error)
	Update(ctx context.Context, content core.Content) (core.Content, error)
}

// Thumbnailer produces a public asset path for a title. Implementations
// never fail; they degrade to a fallback asset instead.
type Thumbnailer interface {
	Generate(ctx context.Context, title, filename string) string
}

// UsageRecorder accumulates monthly usage counters.
type UsageRecorder interface {
	Add(ctx context.Context, delta core.UsageSummary) error
}

// Options configures a publish run.
type Options struct {
	SiteURL         string // Base URL for published article links
	OutputDirectory string // Where markdown exports are written, empty disables
	WithThumbnail   bool   // Generate a thumbnail before publishing
}

// Publisher transitions content records to published.
type Publisher struct {
	store  ContentStore
	thumbs Thumbnailer
	usage  UsageRecorder
	log    *slog.Logger
}

// NewPublisher creates a publisher. thumbs and usage may be nil; the
// corresponding steps are skipped.
func NewPublisher(store ContentStore, thumbs Thumbnailer, usage UsageRecorder) *Publisher {
	return &Publisher{
		store:  store,
		thumbs: thumbs,
		usage:  usage,
		log:    logger.Get(),
	}
}

// Result reports what a publish run produced.
type Result struct {
	Content      core.Content `json:"content"`
	PublishedURL string       `json:"publishedUrl"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	ExportPath   string       `json:"exportPath,omitempty"`
}

// Publish loads the content record, optionally attaches a thumbnail, marks
// it published and writes the markdown export. The record update happens
// before the file write so a disk failure leaves the record authoritative.
func (p *Publisher) Publish(ctx context.Context, id string, opts Options) (Result, error) {
	content, err := p.store.Get(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load content %s: %w", id, err)
	}
	if content.Status == core.ContentStatusPublished {
		return Result{}, fmt.Errorf("content %s is already published", id)
	}

	slug := Slug(content.Title, content.ID)

	if opts.WithThumbnail && p.thumbs != nil && content.ThumbnailURL == "" {
		content.ThumbnailURL = p.thumbs.Generate(ctx, content.Title, slug)
	}

	content.Status = core.ContentStatusPublished
	content.PublishedURL = strings.TrimRight(opts.SiteURL, "/") + "/blog/" + slug

	updated, err := p.store.Update(ctx, content)
	if err != nil {
		return Result{}, fmt.Errorf("failed to update content record: %w", err)
	}
	content = updated

	result := Result{
		Content:      content,
		PublishedURL: content.PublishedURL,
		ThumbnailURL: content.ThumbnailURL,
	}

	if opts.OutputDirectory != "" {
		path, err := WriteMarkdown(content, opts.OutputDirectory, slug)
		if err != nil {
			// Record is already published; the export is a convenience copy.
			p.log.Warn("Markdown export failed after publish", "id", id, "error", err.Error())
		} else {
			result.ExportPath = path
		}
	}

	if p.usage != nil {
		if err := p.usage.Add(ctx, core.UsageSummary{PublishCount: 1}); err != nil {
			p.log.Warn("Failed to record publish usage", "error", err.Error())
		}
	}

	p.log.Info("Content published", "id", id, "url", content.PublishedURL)
	return result, nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9가-힣-]+`)

// Slug derives a URL slug from a title. Korean characters are kept as-is
// since the target site serves percent-encoded paths; titles that reduce to
// nothing fall back to the record ID.
func Slug(title, id string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugUnsafe.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	if s == "" {
		return strings.ToLower(id)
	}
	const maxSlugRunes = 80
	runes := []rune(s)
	if len(runes) > maxSlugRunes {
		s = strings.Trim(string(runes[:maxSlugRunes]), "-")
	}
	return s
}

// WriteMarkdown writes the article as a markdown file with YAML front
// matter and returns the written path.
func WriteMarkdown(content core.Content, dir, slug string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, slug+".md")
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", content.Title)
	fmt.Fprintf(&b, "description: %q\n", content.Description)
	fmt.Fprintf(&b, "category: %s\n", content.Category)
	if len(content.Tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", content.Tags)
	}
	if content.ThumbnailURL != "" {
		fmt.Fprintf(&b, "thumbnail: %s\n", content.ThumbnailURL)
	}
	fmt.Fprintf(&b, "date: %s\n", time.Now().Format("2006-01-02"))
	b.WriteString("---\n\n")
	b.WriteString(content.Body)
	if !strings.HasSuffix(content.Body, "\n") {
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write markdown file: %w", err)
	}
	return path, nil
}
