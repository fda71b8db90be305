package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shanehull/tdnetviewer/internal/ai"
	"github.com/shanehull/tdnetviewer/internal/config"
	"github.com/shanehull/tdnetviewer/internal/prompt"
	"github.com/shanehull/tdnetviewer/internal/summary"
	"github.com/shanehull/tdnetviewer/internal/tdnet"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	prompts prompt.Definitions
}

func loadApp(cmd *cobra.Command, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		prompts: prompt.LoadOrDefault(cfg.Summary.PromptsPath, logger),
	}, nil
}

func (a *app) newFetcher(observe func(tdnet.PageOutcome)) *tdnet.Fetcher {
	opts := []tdnet.Option{
		tdnet.WithBaseURL(a.cfg.TDnet.BaseURL),
		tdnet.WithHTTPClient(&http.Client{Timeout: a.cfg.TDnet.RequestTimeout}),
		tdnet.WithMaxPages(a.cfg.TDnet.MaxPages),
		tdnet.WithErrorPolicy(a.cfg.ErrorPolicy()),
		tdnet.WithLogger(a.logger),
	}
	if observe != nil {
		opts = append(opts, tdnet.WithPageObserver(observe))
	}
	return tdnet.NewFetcher(opts...)
}

// newSummaryService builds the summary pipeline. The Gemini client is only created when a
// usable key is configured; otherwise every summary takes the heuristic path.
func (a *app) newSummaryService(ctx context.Context) *summary.Service {
	heuristic := summary.NewHeuristic(a.prompts.Keywords, a.cfg.Summary.FallbackLines)
	downloader := tdnet.NewPDFDownloader(nil)
	extractor := tdnet.PDFToText{Binary: a.cfg.Summary.PDFToText}

	key := a.cfg.Gemini.APIKey
	var aiSummarizer summary.AISummarizer
	if key != "" && key != summary.PlaceholderAPIKey {
		gen, err := ai.NewGeminiGenerator(ctx, key)
		if err != nil {
			a.logger.Error("failed to create gemini client, AI summaries disabled", "error", err)
		} else {
			aiSummarizer = &ai.Summarizer{
				Generator:   gen,
				Model:       a.cfg.Gemini.Model,
				Definitions: a.prompts,
			}
		}
	}

	svc := summary.NewService(key, downloader, extractor, aiSummarizer, heuristic, a.logger)
	a.logger.Info("summary service ready", "ai_enabled", svc.AIEnabled(), "model", a.cfg.Gemini.Model)
	return svc
}
