package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"copydesk/internal/category"
	"copydesk/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (llm.TextResult, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return llm.TextResult{}, f.err
	}
	return llm.TextResult{Text: f.response, Tokens: 42}, nil
}

func mustCategory(t *testing.T, key string) category.Category {
	t.Helper()
	cat, err := category.Get(key)
	if err != nil {
		t.Fatalf("Failed to load category %s: %v", key, err)
	}
	return cat
}

func TestGenerateBodyStripsFence(t *testing.T) {
	client := &fakeLLM{response: "```markdown\n## 서론\n\n본문입니다.\n```"}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	body, tokens, err := gen.GenerateBody(context.Background(), "메타 광고 예산 설정 가이드", mustCategory(t, "meta-ads"))
	if err != nil {
		t.Fatalf("GenerateBody failed: %v", err)
	}
	if strings.Contains(body, "```") {
		t.Errorf("Expected fence to be stripped, got %q", body)
	}
	if tokens != 42 {
		t.Errorf("Expected token count 42, got %d", tokens)
	}
}

func TestGenerateBodyPropagatesError(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	if _, _, err := gen.GenerateBody(context.Background(), "제목", mustCategory(t, "meta-ads")); err == nil {
		t.Error("Expected body generation error to propagate")
	}
}

func TestGenerateBodyUsesFAQTemplate(t *testing.T) {
	client := &fakeLLM{response: "본문"}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	_, _, err := gen.GenerateBody(context.Background(), "광고 계정 비활성화 해결법", mustCategory(t, "faq"))
	if err != nil {
		t.Fatalf("GenerateBody failed: %v", err)
	}
	if len(client.prompts) != 1 || !strings.Contains(client.prompts[0], "FAQ") {
		t.Error("Expected FAQ category to use the FAQ article template")
	}
}

func TestDescriptionDegradesToBodyFirstLine(t *testing.T) {
	client := &fakeLLM{err: errors.New("timeout")}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	body := "메타 광고 예산을 처음 설정하는 실무자를 위한 안내입니다.\n\n## 서론"
	desc, tokens := gen.Description(context.Background(), "제목", body)

	if desc != "메타 광고 예산을 처음 설정하는 실무자를 위한 안내입니다." {
		t.Errorf("Unexpected fallback description: %q", desc)
	}
	if tokens != 0 {
		t.Errorf("Expected no tokens on fallback, got %d", tokens)
	}
}

func TestDescriptionTrimsQuotes(t *testing.T) {
	client := &fakeLLM{response: `"메타 광고 예산 설정의 모든 것을 정리했습니다."`}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	desc, _ := gen.Description(context.Background(), "제목", "본문")
	if strings.HasPrefix(desc, `"`) || strings.HasSuffix(desc, `"`) {
		t.Errorf("Expected surrounding quotes to be trimmed, got %q", desc)
	}
}

func TestTagsDegradesToCategoryKey(t *testing.T) {
	client := &fakeLLM{err: errors.New("timeout")}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	tags, _ := gen.Tags(context.Background(), "제목", mustCategory(t, "naver-ads"))
	if tags != "naver-ads" {
		t.Errorf("Expected category key fallback, got %q", tags)
	}
}

func TestTagsNormalizesCommaLine(t *testing.T) {
	client := &fakeLLM{response: "메타광고, 인스타그램 , 릴스,, 광고운영\n부연 설명은 무시"}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	tags, _ := gen.Tags(context.Background(), "제목", mustCategory(t, "meta-ads"))
	if tags != "메타광고,인스타그램,릴스,광고운영" {
		t.Errorf("Unexpected normalized tags: %q", tags)
	}
}

func TestResearchKeywordsDegradesToEmpty(t *testing.T) {
	client := &fakeLLM{err: errors.New("search unavailable")}
	gen := NewGenerator(client, DefaultGeneratorOptions())

	keywords, tokens := gen.ResearchKeywords(context.Background(), "제목", mustCategory(t, "meta-ads"))
	if keywords != "" || tokens != 0 {
		t.Errorf("Expected empty keywords on failure, got %q (%d tokens)", keywords, tokens)
	}
}
