package topics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"copydesk/internal/core"
	"copydesk/internal/llm"
	"copydesk/internal/logger"
)

// LLMClient is the subset of the Gemini client the topic pipeline needs.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (llm.TextResult, error)
}

// DuplicateChecker judges whether a candidate title duplicates any title in a
// comparison list. Exact matches short-circuit; otherwise the model judges
// semantic similarity against the list.
//
// The checker fails OPEN: any provider or parse error degrades to
// "not duplicate" so a flaky upstream cannot stall the pipeline. This trades
// precision for throughput and is a deliberate product decision, not a bug.
type DuplicateChecker struct {
	llm LLMClient
	log *slog.Logger
}

// NewDuplicateChecker creates a duplicate checker backed by the given client.
func NewDuplicateChecker(client LLMClient) *DuplicateChecker {
	return &DuplicateChecker{
		llm: client,
		log: logger.Get(),
	}
}

// compareCap bounds how many existing titles are embedded in the prompt.
const compareCap = 100

// Check returns the duplicate verdict for title against existing titles.
// An empty comparison list returns a negative verdict without any model call.
func (d *DuplicateChecker) Check(ctx context.Context, title string, existing []string) core.DuplicateResult {
	if len(existing) == 0 {
		return core.DuplicateResult{IsDuplicate: false}
	}

	for _, t := range existing {
		if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(title)) {
			return core.DuplicateResult{
				IsDuplicate: true,
				SimilarTo:   t,
				Reason:      "exact match",
			}
		}
	}

	compare := existing
	if len(compare) > compareCap {
		compare = compare[len(compare)-compareCap:]
	}

	result, err := d.llm.GenerateText(ctx, buildSimilarityPrompt(title, compare), llm.TextGenerationOptions{
		Temperature: 0.1,
		MaxTokens:   256,
	})
	if err != nil {
		d.log.Warn("Duplicate check degraded to not-duplicate", "title", title, "error", err.Error())
		return core.DuplicateResult{IsDuplicate: false}
	}

	var verdict core.DuplicateResult
	if !llm.FirstJSONObject(result.Text, &verdict) {
		d.log.Warn("Duplicate check response unparseable, degrading to not-duplicate", "title", title)
		return core.DuplicateResult{IsDuplicate: false}
	}
	return verdict
}

func buildSimilarityPrompt(title string, existing []string) string {
	var sb strings.Builder
	sb.WriteString("다음은 이미 발행되었거나 대기 중인 콘텐츠 주제 목록입니다:\n\n")
	for i, t := range existing {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, t))
	}
	sb.WriteString(fmt.Sprintf("\n새 후보 주제: \"%s\"\n\n", title))
	sb.WriteString(`새 후보 주제가 목록의 어떤 주제와 사실상 같은 내용을 다루는지 판단하세요.
단순히 키워드가 겹치는 것이 아니라, 독자가 "같은 글"이라고 느낄 정도로 주제가 겹치는 경우에만 중복입니다.

다음 형식의 JSON 객체만 응답하세요 (설명, 코드블록 금지):
{"isDuplicate": true 또는 false, "similarTo": "가장 유사한 기존 주제 (중복일 때만)", "reason": "한 문장 판단 근거"}`)
	return sb.String()
}
