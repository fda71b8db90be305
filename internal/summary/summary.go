/*
Package summary turns a disclosure PDF into a Japanese summary, preferring the AI summarizer
and falling back to the keyword heuristic when AI is not configured or fails.
*/
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shanehull/tdnetviewer/internal/types"
)

// PlaceholderAPIKey is the sample value shipped in example env files; it counts as unset.
const PlaceholderAPIKey = "your-api-key-here"

const (
	ApologyText    = "申し訳ございませんが、このPDFからテキストを抽出できませんでした。画像ベースのPDFか、保護されたPDFの可能性があります。"
	NoKeyNotice    = "\n\n※ より詳細な分析のため、Gemini API キーを設定してください。"
	AIFailedNotice = "\n\n※ AI分析に失敗したため、基本的な要約を表示しています。"
)

var (
	ErrExtractionFailed = errors.New("PDF text extraction failed")
	// ErrSummaryFailed is returned when the AI path failed and the heuristic recovery
	// could not run either.
	ErrSummaryFailed = errors.New("summary generation failed")
)

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

type AISummarizer interface {
	Summarize(ctx context.Context, text, title string) (string, error)
}

// Service orchestrates download, extraction and the choice of summarizer.
type Service struct {
	apiKey     string
	downloader Downloader
	extractor  TextExtractor
	ai         AISummarizer
	heuristic  Heuristic
	logger     *slog.Logger
}

func NewService(apiKey string, d Downloader, x TextExtractor, ai AISummarizer, h Heuristic, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		apiKey:     apiKey,
		downloader: d,
		extractor:  x,
		ai:         ai,
		heuristic:  h,
		logger:     logger,
	}
}

// AIEnabled reports whether a usable credential and AI summarizer are configured.
func (s *Service) AIEnabled() bool {
	return s.ai != nil && s.apiKey != "" && s.apiKey != PlaceholderAPIKey
}

func (s *Service) Summarize(ctx context.Context, pdfURL, title string) (*types.SummaryResult, error) {
	s.logger.Info("generating summary", "title", title, "pdf_url", pdfURL)

	text, err := s.fetchText(ctx, pdfURL)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Info("no text extracted from PDF", "pdf_url", pdfURL)
		return &types.SummaryResult{Success: true, Summary: ApologyText}, nil
	}

	textLength := utf8.RuneCountInString(text)

	if !s.AIEnabled() {
		s.logger.Info("gemini API key not configured, using fallback summarization")
		return &types.SummaryResult{
			Success:    true,
			Summary:    s.heuristic.Summarize(text, title) + NoKeyNotice,
			TextLength: &textLength,
			Method:     types.MethodFallback,
		}, nil
	}

	aiSummary, err := s.ai.Summarize(ctx, text, title)
	if err == nil {
		return &types.SummaryResult{
			Success:    true,
			Summary:    aiSummary,
			TextLength: &textLength,
			Method:     types.MethodAI,
		}, nil
	}

	s.logger.Warn("AI summary failed, falling back to heuristic summary", "pdf_url", pdfURL, "error", err)
	return s.recoverWithHeuristic(ctx, pdfURL, text, title)
}

// recoverWithHeuristic reuses the extracted text when present and only downloads the PDF
// again when it is not.
func (s *Service) recoverWithHeuristic(ctx context.Context, pdfURL, text, title string) (*types.SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = s.fetchText(ctx, pdfURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSummaryFailed, err)
		}
	}

	return &types.SummaryResult{
		Success: true,
		Summary: s.heuristic.Summarize(text, title) + AIFailedNotice,
		Method:  types.MethodFallback,
	}, nil
}

func (s *Service) fetchText(ctx context.Context, pdfURL string) (string, error) {
	pdf, err := s.downloader.Download(ctx, pdfURL)
	if err != nil {
		return "", err
	}

	text, err := s.extractor.ExtractText(ctx, pdf)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return text, nil
}
