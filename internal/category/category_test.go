package category

import (
	"sort"
	"testing"
)

func TestGetKnownCategories(t *testing.T) {
	for _, key := range []string{"meta-ads", "naver-ads", "ai-news", "faq", "local-marketing"} {
		cat, err := Get(key)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
		if cat.Key != key {
			t.Errorf("Expected key %q, got %q", key, cat.Key)
		}
		if len(cat.RequiredKeywords) == 0 {
			t.Errorf("Category %q has no required keywords", key)
		}
		if len(cat.SearchQueries) == 0 {
			t.Errorf("Category %q has no search queries", key)
		}
	}
}

func TestGetUnknownCategory(t *testing.T) {
	if _, err := Get("crypto"); err == nil {
		t.Error("Expected unknown category to fail")
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	if len(keys) != 5 {
		t.Fatalf("Expected 5 categories, got %d", len(keys))
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Expected sorted keys, got %v", keys)
	}
}

func TestIsFAQ(t *testing.T) {
	faq, _ := Get("faq")
	if !faq.IsFAQ() {
		t.Error("Expected faq category to use the FAQ template")
	}
	meta, _ := Get("meta-ads")
	if meta.IsFAQ() {
		t.Error("Expected meta-ads to use the general template")
	}
}

func TestContainsRequiredCaseInsensitive(t *testing.T) {
	cat, _ := Get("meta-ads")

	cases := []struct {
		title string
		want  bool
	}{
		{"Meta 광고 최적화 전략", true},
		{"INSTAGRAM 릴스 활용법", true},
		{"네이버 블로그 수익화", false},
	}
	for _, tc := range cases {
		if got := cat.ContainsRequired(tc.title); got != tc.want {
			t.Errorf("ContainsRequired(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestContainsForbidden(t *testing.T) {
	if kw := ContainsForbidden("다이어트 보조제 광고로 매출 올리기"); kw != "다이어트" {
		t.Errorf("Expected forbidden keyword, got %q", kw)
	}
	if kw := ContainsForbidden("메타 광고 예산 설정 가이드"); kw != "" {
		t.Errorf("Expected clean title, got %q", kw)
	}
	if kw := ContainsForbidden("GDPR 대응 마케팅 체크리스트"); kw != "gdpr" {
		t.Errorf("Expected case-insensitive match, got %q", kw)
	}
}
