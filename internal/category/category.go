// Package category holds the static per-category configuration that drives
// topic validation and prompt construction. Categories are registered in an
// immutable table so new ones can be added without touching pipeline code.
package category

import (
	"fmt"
	"sort"
	"strings"
)

// PromptKind selects which content prompt template a category uses.
type PromptKind string

const (
	// PromptGeneral is the default long-form article outline.
	PromptGeneral PromptKind = "general"
	// PromptFAQ is the troubleshooting/FAQ outline with required Q&A sections.
	PromptFAQ PromptKind = "faq"
)

// Category describes one marketing category: keyword constraints for the topic
// validator plus the trend queries and prompt kind for the generators.
type Category struct {
	Key              string     // Stable key used in URLs and records (e.g. "meta-ads")
	Label            string     // Human-readable label used inside prompts
	RequiredKeywords []string   // A valid title must contain at least one of these
	SearchQueries    []string   // Trend queries embedded into the topic prompt
	Prompt           PromptKind // Which content template applies
}

// ForbiddenKeywords is the global denylist applied to every category. It keeps
// generated topics on-domain by rejecting unrelated verticals, competitor
// platforms, and privacy-law jargon the model tends to drift into.
var ForbiddenKeywords = []string{
	// Unrelated verticals
	"건강", "다이어트", "영양제", "레시피", "맛집", "요리",
	"여행", "호텔", "항공권",
	// Competitor platforms
	"위홍보", "마케팅몬스터", "애드몬",
	// Privacy-law jargon
	"개인정보보호법", "gdpr", "정보통신망법",
}

var registry = map[string]Category{
	"meta-ads": {
		Key:   "meta-ads",
		Label: "메타(페이스북/인스타그램) 광고",
		RequiredKeywords: []string{
			"메타", "meta", "페이스북", "facebook", "인스타그램", "instagram",
			"광고", "마케팅", "쓰레드", "threads", "릴스", "reels",
		},
		SearchQueries: []string{
			"메타 광고 정책 변경",
			"인스타그램 릴스 광고 트렌드",
			"페이스북 광고 성과 개선",
			"Advantage+ 캠페인 활용법",
		},
		Prompt: PromptGeneral,
	},
	"naver-ads": {
		Key:   "naver-ads",
		Label: "네이버 검색광고/플레이스",
		RequiredKeywords: []string{
			"네이버", "naver", "파워링크", "플레이스", "검색광고", "광고",
			"스마트플레이스", "키워드", "마케팅", "블로그",
		},
		SearchQueries: []string{
			"네이버 검색광고 품질지수",
			"스마트플레이스 상위노출",
			"네이버 블로그 마케팅 전략",
		},
		Prompt: PromptGeneral,
	},
	"ai-news": {
		Key:   "ai-news",
		Label: "AI 마케팅 뉴스",
		RequiredKeywords: []string{
			"ai", "인공지능", "챗gpt", "chatgpt", "제미나이", "gemini",
			"자동화", "마케팅", "광고", "생성형",
		},
		SearchQueries: []string{
			"생성형 AI 마케팅 활용 사례",
			"AI 광고 소재 제작 도구",
			"마케팅 자동화 최신 동향",
		},
		Prompt: PromptGeneral,
	},
	"faq": {
		Key:   "faq",
		Label: "광고 운영 FAQ/트러블슈팅",
		RequiredKeywords: []string{
			"광고", "계정", "정지", "거부", "비승인", "리젝", "마케팅",
			"픽셀", "전환", "예산", "과금",
		},
		SearchQueries: []string{
			"광고 계정 비활성화 해결",
			"광고 비승인 사유",
			"픽셀 전환 추적 오류",
		},
		Prompt: PromptFAQ,
	},
	"local-marketing": {
		Key:   "local-marketing",
		Label: "로컬/소상공인 마케팅",
		RequiredKeywords: []string{
			"매장", "소상공인", "자영업", "로컬", "지역", "마케팅",
			"광고", "단골", "오픈", "홍보",
		},
		SearchQueries: []string{
			"소상공인 온라인 마케팅 지원",
			"매장 방문 유도 캠페인",
			"지역 타겟 광고 전략",
		},
		Prompt: PromptGeneral,
	},
}

// Get returns the category registered under key.
func Get(key string) (Category, error) {
	c, ok := registry[key]
	if !ok {
		return Category{}, fmt.Errorf("unknown category: %s", key)
	}
	return c, nil
}

// Keys returns all registered category keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsFAQ reports whether the category uses the FAQ content template.
func (c Category) IsFAQ() bool {
	return c.Prompt == PromptFAQ
}

// ContainsRequired reports whether the lowercased title contains at least one
// of the category's required keywords.
func (c Category) ContainsRequired(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range c.RequiredKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ContainsForbidden returns the first global forbidden keyword found in the
// lowercased title, or "" if none match.
func ContainsForbidden(title string) string {
	lower := strings.ToLower(title)
	for _, kw := range ForbiddenKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
