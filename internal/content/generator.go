// Package content turns accepted topics into full article drafts: body
// generation, SEO keyword research, meta description, and tags.
package content

import (
	"context"
	"fmt"
	"strings"

	"copydesk/internal/category"
	"copydesk/internal/llm"
)

// LLMClient is the subset of the Gemini client content generation needs.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (llm.TextResult, error)
}

// GeneratorOptions tunes content generation.
type GeneratorOptions struct {
	MaxTokens   int32   // Body generation budget
	Temperature float32 // Lower than topic generation: fidelity over diversity
}

// DefaultGeneratorOptions returns the production defaults.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}

// Generator produces article bodies and their SEO metadata.
type Generator struct {
	llm  LLMClient
	opts GeneratorOptions
}

// NewGenerator creates a content generator.
func NewGenerator(client LLMClient, opts GeneratorOptions) *Generator {
	if opts.MaxTokens == 0 {
		opts = DefaultGeneratorOptions()
	}
	return &Generator{llm: client, opts: opts}
}

// GenerateBody produces the full markdown body for a topic title. The body's
// structure is not validated; the template is trusted.
func (g *Generator) GenerateBody(ctx context.Context, title string, cat category.Category) (string, int64, error) {
	result, err := g.llm.GenerateText(ctx, buildArticlePrompt(title, cat), llm.TextGenerationOptions{
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", 0, fmt.Errorf("content generation for %q: %w", title, err)
	}
	return llm.CleanFencedBlock(result.Text), result.Tokens, nil
}

// Description produces a meta description from the title and body. On
// provider failure it degrades to a truncation of the body's first line.
func (g *Generator) Description(ctx context.Context, title, body string) (string, int64) {
	result, err := g.llm.GenerateText(ctx, buildDescriptionPrompt(title, body), llm.TextGenerationOptions{
		MaxTokens:   256,
		Temperature: 0.5,
	})
	if err != nil {
		return fallbackDescription(body), 0
	}
	return strings.Trim(strings.TrimSpace(result.Text), `"“”`), result.Tokens
}

// Tags produces a comma-delimited tag line. Degrades to the category key.
func (g *Generator) Tags(ctx context.Context, title string, cat category.Category) (string, int64) {
	result, err := g.llm.GenerateText(ctx, buildTagsPrompt(title, cat), llm.TextGenerationOptions{
		MaxTokens:   128,
		Temperature: 0.5,
	})
	if err != nil {
		return cat.Key, 0
	}
	return normalizeCommaLine(result.Text), result.Tokens
}

// ResearchKeywords runs a search-grounded keyword research call. Degrades to
// an empty string on failure; keywords are an enrichment, not a requirement.
func (g *Generator) ResearchKeywords(ctx context.Context, title string, cat category.Category) (string, int64) {
	result, err := g.llm.GenerateText(ctx, buildKeywordResearchPrompt(title, cat), llm.TextGenerationOptions{
		MaxTokens:       256,
		Temperature:     0.4,
		SearchGrounding: true,
	})
	if err != nil {
		return "", 0
	}
	return normalizeCommaLine(result.Text), result.Tokens
}

func fallbackDescription(body string) string {
	line := body
	if idx := strings.Index(line, "\n"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > 120 {
		line = string(runes[:120])
	}
	return line
}

// normalizeCommaLine collapses a possibly multi-line model response into one
// trimmed comma-delimited line.
func normalizeCommaLine(raw string) string {
	raw = llm.CleanFencedBlock(raw)
	if idx := strings.Index(raw, "\n"); idx >= 0 {
		raw = raw[:idx]
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
