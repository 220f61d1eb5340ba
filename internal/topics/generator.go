package topics

import (
	"context"
	"fmt"
	"strings"

	"copydesk/internal/category"
	"copydesk/internal/llm"
)

// GeneratorOptions tunes topic generation.
type GeneratorOptions struct {
	Temperature   float32 // High temperature favors diversity over fidelity
	MinTitleRunes int
	MaxTitleRunes int
	ExistingCap   int // Max existing titles embedded in the anti-duplicate section
}

// DefaultGeneratorOptions returns the production defaults.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Temperature:   0.9,
		MinTitleRunes: 10,
		MaxTitleRunes: 100,
		ExistingCap:   100,
	}
}

// Generator produces candidate topic titles for a category using a
// search-grounded model call.
type Generator struct {
	llm  LLMClient
	opts GeneratorOptions
}

// NewGenerator creates a topic generator.
func NewGenerator(client LLMClient, opts GeneratorOptions) *Generator {
	if opts.MinTitleRunes == 0 {
		opts = DefaultGeneratorOptions()
	}
	return &Generator{llm: client, opts: opts}
}

// Generate asks the model for up to count titles, avoiding existingTitles.
// The returned list is unranked and carries no count guarantee; callers
// re-request when fewer titles than desired survive filtering. The token
// count covers the single model call.
func (g *Generator) Generate(ctx context.Context, cat category.Category, count int, existingTitles []string) ([]string, int64, error) {
	prompt := g.buildPrompt(cat, count, existingTitles)

	result, err := g.llm.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		Temperature:     g.opts.Temperature,
		MaxTokens:       4096,
		SearchGrounding: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("topic generation for %s: %w", cat.Key, err)
	}

	titles := llm.ParseTitleArray(result.Text, g.opts.MinTitleRunes, g.opts.MaxTitleRunes)
	return titles, result.Tokens, nil
}

func (g *Generator) buildPrompt(cat category.Category, count int, existingTitles []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("당신은 한국 시장을 잘 아는 %s 분야 콘텐츠 기획자입니다.\n", cat.Label))
	sb.WriteString(fmt.Sprintf("블로그 아티클 주제(제목) %d개를 제안하세요.\n\n", count))

	sb.WriteString("최신 트렌드를 반영하기 위해 아래 검색어들로 검색한 결과를 참고하세요:\n")
	for _, q := range cat.SearchQueries {
		sb.WriteString(fmt.Sprintf("- %s\n", q))
	}

	if len(existingTitles) > 0 {
		capped := existingTitles
		if len(capped) > g.opts.ExistingCap {
			capped = capped[len(capped)-g.opts.ExistingCap:]
		}
		sb.WriteString("\n아래 주제들은 이미 사용되었습니다. 같거나 비슷한 주제는 절대 제안하지 마세요:\n")
		for _, t := range capped {
			sb.WriteString(fmt.Sprintf("- %s\n", t))
		}
	}

	sb.WriteString(fmt.Sprintf(`
규칙:
- 각 제목은 %d자 이상 %d자 이하
- 실무자가 바로 클릭하고 싶은 구체적인 제목 (연도, 숫자, 사례 활용)
- %s 업무와 직접 관련된 주제만
- 건강, 음식, 여행 등 무관한 분야 금지

bare JSON 배열로만 응답하세요. 설명이나 코드블록 없이:
["제목1", "제목2", ...]`,
		g.opts.MinTitleRunes, g.opts.MaxTitleRunes, cat.Label))

	return sb.String()
}
