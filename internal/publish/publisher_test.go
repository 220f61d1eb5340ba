package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"copydesk/internal/core"
)

type fakeContentStore struct {
	content   core.Content
	getErr    error
	updateErr error
	updated   *core.Content
}

func (f *fakeContentStore) Get(ctx context.Context, id string) (core.Content, error) {
	if f.getErr != nil {
		return core.Content{}, f.getErr
	}
	return f.content, nil
}

func (f *fakeContentStore) Update(ctx context.Context, content core.Content) (core.Content, error) {
	if f.updateErr != nil {
		return core.Content{}, f.updateErr
	}
	f.updated = &content
	return content, nil
}

type fakeThumbnailer struct {
	path  string
	calls int
}

func (f *fakeThumbnailer) Generate(ctx context.Context, title, filename string) string {
	f.calls++
	return f.path
}

type fakeUsage struct {
	deltas []core.UsageSummary
}

func (f *fakeUsage) Add(ctx context.Context, delta core.UsageSummary) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

func draftContent() core.Content {
	return core.Content{
		ID:          "rec42",
		Title:       "메타 광고 예산 설정 가이드",
		Body:        "## 서론\n\n본문입니다.",
		Description: "메타 광고 예산 설정을 정리했습니다.",
		Category:    "meta-ads",
		Tags:        "메타광고,예산",
		Status:      core.ContentStatusDraft,
	}
}

func TestPublishMarksPublishedAndSetsURL(t *testing.T) {
	store := &fakeContentStore{content: draftContent()}
	usage := &fakeUsage{}
	p := NewPublisher(store, nil, usage)

	result, err := p.Publish(context.Background(), "rec42", Options{SiteURL: "https://example.co.kr/"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if store.updated == nil {
		t.Fatal("Expected record update")
	}
	if store.updated.Status != core.ContentStatusPublished {
		t.Errorf("Expected published status, got %s", store.updated.Status)
	}
	if !strings.HasPrefix(result.PublishedURL, "https://example.co.kr/blog/") {
		t.Errorf("Unexpected published URL: %q", result.PublishedURL)
	}
	if len(usage.deltas) != 1 || usage.deltas[0].PublishCount != 1 {
		t.Errorf("Expected one publish usage delta, got %+v", usage.deltas)
	}
}

func TestPublishRejectsAlreadyPublished(t *testing.T) {
	content := draftContent()
	content.Status = core.ContentStatusPublished
	p := NewPublisher(&fakeContentStore{content: content}, nil, nil)

	if _, err := p.Publish(context.Background(), "rec42", Options{}); err == nil {
		t.Error("Expected already-published content to be rejected")
	}
}

func TestPublishGeneratesThumbnailWhenRequested(t *testing.T) {
	store := &fakeContentStore{content: draftContent()}
	thumbs := &fakeThumbnailer{path: "/images/contents/slug.jpg"}
	p := NewPublisher(store, thumbs, nil)

	result, err := p.Publish(context.Background(), "rec42", Options{WithThumbnail: true})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if thumbs.calls != 1 {
		t.Errorf("Expected one thumbnail call, got %d", thumbs.calls)
	}
	if result.ThumbnailURL != "/images/contents/slug.jpg" {
		t.Errorf("Unexpected thumbnail URL: %q", result.ThumbnailURL)
	}
}

func TestPublishSkipsThumbnailWhenAlreadySet(t *testing.T) {
	content := draftContent()
	content.ThumbnailURL = "/images/contents/existing.jpg"
	thumbs := &fakeThumbnailer{path: "/images/contents/new.jpg"}
	p := NewPublisher(&fakeContentStore{content: content}, thumbs, nil)

	if _, err := p.Publish(context.Background(), "rec42", Options{WithThumbnail: true}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if thumbs.calls != 0 {
		t.Errorf("Expected existing thumbnail to be kept, got %d calls", thumbs.calls)
	}
}

func TestPublishWritesMarkdownExport(t *testing.T) {
	dir := t.TempDir()
	store := &fakeContentStore{content: draftContent()}
	p := NewPublisher(store, nil, nil)

	result, err := p.Publish(context.Background(), "rec42", Options{SiteURL: "https://example.co.kr", OutputDirectory: dir})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.ExportPath == "" {
		t.Fatal("Expected an export path")
	}

	data, err := os.ReadFile(result.ExportPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Error("Expected front matter at the top of the export")
	}
	if !strings.Contains(text, "category: meta-ads") {
		t.Error("Expected category in front matter")
	}
	if !strings.Contains(text, "tags: [메타광고,예산]") {
		t.Error("Expected tag list in front matter")
	}
	if !strings.Contains(text, "본문입니다.") {
		t.Error("Expected body in export")
	}
}

func TestPublishSurvivesExportFailure(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	store := &fakeContentStore{content: draftContent()}
	p := NewPublisher(store, nil, nil)

	// The record update already happened; a failed export is logged, not fatal.
	result, err := p.Publish(context.Background(), "rec42", Options{OutputDirectory: filepath.Join(blocked, "out")})
	if err != nil {
		t.Fatalf("Expected export failure to be non-fatal, got %v", err)
	}
	if result.ExportPath != "" {
		t.Errorf("Expected no export path, got %q", result.ExportPath)
	}
}

func TestPublishPropagatesUpdateError(t *testing.T) {
	store := &fakeContentStore{content: draftContent(), updateErr: errors.New("store down")}
	p := NewPublisher(store, nil, nil)

	if _, err := p.Publish(context.Background(), "rec42", Options{}); err == nil {
		t.Error("Expected update error to propagate")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		name  string
		title string
		id    string
		want  string
	}{
		{"korean kept", "메타 광고 예산 설정", "recX", "메타-광고-예산-설정"},
		{"mixed case ascii", "Meta Ads Guide 2025", "recX", "meta-ads-guide-2025"},
		{"symbols stripped", "광고비 50% 아끼는 법!", "recX", "광고비-50-아끼는-법"},
		{"empty falls back to id", "!!!", "recX", "recx"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slug(tc.title, tc.id); got != tc.want {
				t.Errorf("Slug(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}
