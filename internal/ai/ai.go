/*
Package ai produces Japanese summaries of disclosure text with the Gemini API and appends
the provenance footer shown to readers.
*/
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shanehull/tdnetviewer/internal/locale"
	"github.com/shanehull/tdnetviewer/internal/prompt"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.0-flash-001"
	maxChars     = 30000
	truncMarker  = "..."
)

// ErrAIFailed wraps every failure of the generation call.
var ErrAIFailed = errors.New("AI analysis failed")

// Params are the decoding parameters sent with every request.
type Params struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// SummaryParams are fixed for disclosure summaries.
var SummaryParams = Params{
	Temperature:     0.2,
	TopK:            32,
	TopP:            0.9,
	MaxOutputTokens: 1500,
}

// Generator is the generative-text capability.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, params Params) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string, params Params) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopK:            genai.Ptr(params.TopK),
		TopP:            genai.Ptr(params.TopP),
		MaxOutputTokens: params.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini API returned no text")
	}
	return text, nil
}

// Summarizer renders the configured prompt and decorates the model output.
type Summarizer struct {
	Generator   Generator
	Model       string
	Definitions prompt.Definitions
	Now         func() time.Time
}

func (s *Summarizer) Summarize(ctx context.Context, text, title string) (string, error) {
	model := s.Model
	if model == "" {
		model = DefaultModel
	}

	p := s.Definitions.Template.Render(title, truncate(text, maxChars))

	summary, err := s.Generator.Generate(ctx, model, p, SummaryParams)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAIFailed, err)
	}

	return summary + s.footer(utf8.RuneCountInString(text)), nil
}

func (s *Summarizer) footer(chars int) string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	meta := s.Definitions.Metadata

	return fmt.Sprintf(`

──────────────────
■ 分析情報
- 文字数: %s文字
- 分析日時: %s
- 分析エンジン: %s

%s`, locale.Count(chars), locale.Timestamp(now()), meta.AnalysisEngine, meta.Disclaimer)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + truncMarker
}
