package llm

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Free-text model responses rarely arrive as clean JSON: they come fenced,
// numbered, quoted, or prefixed with commentary. The helpers here form a
// best-effort chain: strict parse, then fenced-block extraction, then line
// heuristics, then an empty default.

var (
	firstObjectRe  = regexp.MustCompile(`\{[\s\S]*\}`)
	leadingMarkRe  = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*•]\s*)`)
	surroundQuotes = `"'“”「」`
)

// CleanFencedBlock removes a surrounding markdown code fence, if present.
func CleanFencedBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the fence line (```json etc.)
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ParseTitleArray coerces a model response into a list of title strings.
// It first attempts a strict JSON parse (after stripping any code fence),
// then falls back to line-splitting heuristics, keeping only lines of a
// plausible title length. A response with nothing usable yields an empty
// slice, never an error.
func ParseTitleArray(raw string, minLen, maxLen int) []string {
	cleaned := CleanFencedBlock(raw)

	var titles []string
	if err := json.Unmarshal([]byte(cleaned), &titles); err == nil {
		return filterTitles(titles, minLen, maxLen)
	}

	// Sometimes the array is embedded in surrounding prose.
	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &titles); err == nil {
			return filterTitles(titles, minLen, maxLen)
		}
	}

	// Line heuristics: strip numbering, bullets and quotes, keep plausible titles.
	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = leadingMarkRe.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), surroundQuotes+",")
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		n := utf8.RuneCountInString(line)
		if n >= minLen && n <= maxLen {
			out = append(out, line)
		}
	}
	return out
}

func filterTitles(titles []string, minLen, maxLen int) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		n := utf8.RuneCountInString(t)
		if n >= minLen && n <= maxLen {
			out = append(out, t)
		}
	}
	return out
}

// FirstJSONObject extracts the first {...} block from a model response and
// unmarshals it into v. Returns false when no block parses; the caller is
// expected to fall back to its safe default.
func FirstJSONObject(raw string, v any) bool {
	cleaned := CleanFencedBlock(raw)
	match := firstObjectRe.FindString(cleaned)
	if match == "" {
		return false
	}
	return json.Unmarshal([]byte(match), v) == nil
}
