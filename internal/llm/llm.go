package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model for topic and content generation.
	DefaultModel = "gemini-2.5-flash"
	// DefaultImageModel is the default model for thumbnail generation.
	DefaultImageModel = "gemini-2.5-flash-image"
)

// Client wraps the Gemini SDK for text and image generation.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// TextGenerationOptions contains options for a single text generation call.
type TextGenerationOptions struct {
	MaxTokens       int32   // Maximum number of tokens to generate (0 = provider default)
	Temperature     float32 // Temperature for randomness (0.0 to 1.0+)
	Model           string  // Model override (defaults to the client's model)
	SearchGrounding bool    // Enable Google Search grounding for trend-aware output
}

// TextResult is the outcome of a text generation call.
type TextResult struct {
	Text   string // Generated text
	Tokens int64  // Total tokens billed for the call (0 if the provider omitted usage)
}

// ImageResult is the outcome of an image generation call.
type ImageResult struct {
	Data     []byte // Raw image bytes from the first inline image part
	MIMEType string // MIME type reported by the provider
	Tokens   int64  // Total tokens billed for the call
}

// NewClient creates a new Gemini client. The API key is resolved from, in
// order: GEMINI_API_KEY, GOOGLE_GEMINI_API_KEY, GOOGLE_AI_API_KEY, then the
// ai.gemini.api_key viper key.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// GenerateText generates text for the prompt with the given options.
func (c *Client) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (TextResult, error) {
	model := options.Model
	if model == "" {
		model = c.modelName
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{}
	if options.Temperature > 0 {
		config.Temperature = genai.Ptr(options.Temperature)
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = options.MaxTokens
	}
	if options.SearchGrounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return TextResult{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return TextResult{}, fmt.Errorf("empty response from model")
	}

	return TextResult{Text: text, Tokens: usageTokens(resp)}, nil
}

// GenerateImage requests an image-capable generation mode and returns the
// first inline image part of the response. It is an error if the model
// answered without any image data; callers decide how to degrade.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (ImageResult, error) {
	model := viper.GetString("ai.gemini.image_model")
	if model == "" {
		model = DefaultImageModel
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return ImageResult{}, fmt.Errorf("failed to generate image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return ImageResult{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
					Tokens:   usageTokens(resp),
				}, nil
			}
		}
	}

	return ImageResult{}, fmt.Errorf("no inline image part in model response")
}

// ModelName returns the configured text model.
func (c *Client) ModelName() string {
	return c.modelName
}

func usageTokens(resp *genai.GenerateContentResponse) int64 {
	if resp == nil || resp.UsageMetadata == nil {
		return 0
	}
	return int64(resp.UsageMetadata.TotalTokenCount)
}
