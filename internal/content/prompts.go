package content

import (
	"fmt"
	"strings"

	"copydesk/internal/category"
)

// Two structural templates cover every category: the FAQ/troubleshooting
// outline with mandatory Q&A sections, and the general long-form outline.
// Both encode the outline, tone, and length band; the generated body is not
// structurally validated afterwards (current behavior, preserved).

func buildArticlePrompt(title string, cat category.Category) string {
	if cat.IsFAQ() {
		return buildFAQPrompt(title, cat)
	}
	return buildGeneralPrompt(title, cat)
}

func buildGeneralPrompt(title string, cat category.Category) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("당신은 %s 분야 전문 블로그 에디터입니다.\n", cat.Label))
	sb.WriteString(fmt.Sprintf("아래 제목으로 마크다운 아티클 전문을 작성하세요.\n\n제목: %s\n\n", title))

	sb.WriteString(`구조:
1. 도입부 (2-3문단): 독자의 문제 상황에 공감하며 시작. 제목을 반복하지 말 것
2. 본문 섹션 3-5개 (## 헤딩): 각 섹션은 구체적인 실행 방법과 수치/사례 포함
3. 비교표 최소 1개 (마크다운 테이블): 옵션/전략/플랫폼 비교
4. 핵심 요약 (## 마무리): 불릿 3-5개로 실행 체크리스트

규칙:
- 전체 분량 2,500~4,000자
- 존댓말, 실무자 대상, 과장 없는 톤
- "이 글에서는", "알아보겠습니다" 같은 상투적 표현 금지
- 제목(# 헤딩)은 쓰지 말고 본문부터 시작
- 마크다운 본문만 응답 (코드블록으로 감싸지 말 것)`)

	return sb.String()
}

func buildFAQPrompt(title string, cat category.Category) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("당신은 %s를 담당하는 시니어 마케터입니다.\n", cat.Label))
	sb.WriteString(fmt.Sprintf("아래 제목으로 문제 해결형 마크다운 아티클을 작성하세요.\n\n제목: %s\n\n", title))

	sb.WriteString(`구조:
1. 증상 요약 (1-2문단): 어떤 상황에서 이 문제가 생기는지
2. 원인 분석 (## 헤딩): 원인별로 소제목을 나눠 설명
3. 해결 절차 (## 헤딩): 번호 목록으로 단계별 조치, 스크린샷 위치 안내 포함
4. 자주 묻는 질문 (## FAQ): Q/A 형식 최소 3개, 질문은 ### 헤딩
5. 예방 팁 (## 마무리): 재발 방지 불릿 3개

규칙:
- 전체 분량 1,500~2,500자
- 실제 관리 화면의 메뉴명을 구체적으로 언급
- 확인되지 않은 정책을 단정하지 말고 "정책 고객센터 확인" 안내
- 제목(# 헤딩) 없이 본문부터 시작, 마크다운만 응답`)

	return sb.String()
}

func buildDescriptionPrompt(title, body string) string {
	excerpt := body
	if len(excerpt) > 1500 {
		excerpt = excerpt[:1500]
	}
	return fmt.Sprintf(`아래 아티클의 메타 디스크립션을 작성하세요.

제목: %s
본문 일부:
%s

규칙: 80~120자, 검색 결과에서 클릭을 유도하는 한 문장, 따옴표 없이 문장만 응답.`, title, excerpt)
}

func buildTagsPrompt(title string, cat category.Category) string {
	return fmt.Sprintf(`"%s" 아티클(분야: %s)에 붙일 태그 4~6개를 제안하세요.
쉼표로 구분된 한 줄로만 응답하세요. 예: 메타광고,인스타그램,퍼포먼스마케팅`, title, cat.Label)
}

func buildKeywordResearchPrompt(title string, cat category.Category) string {
	return fmt.Sprintf(`"%s" 주제(분야: %s)로 아티클을 쓰려고 합니다.
한국 검색 시장에서 이 주제와 함께 검색되는 SEO 키워드를 조사하세요.
검색량이 있을 법한 구체적인 키워드 5~8개를 쉼표로 구분된 한 줄로만 응답하세요.`, title, cat.Label)
}
