/*
Package digest builds a keyword digest of one day's disclosures: it pages through the
listing, keeps titles that mention a keyword, drops matches already reported today and
summarizes the rest.
*/
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

type ListingFetcher interface {
	FetchAll(ctx context.Context, date string) (*tdnet.Listing, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, pdfURL, title string) (*types.SummaryResult, error)
}

// HistoryFilter drops keywords that were already reported for a disclosure.
type HistoryFilter interface {
	FilterNewMatches(rec types.DisclosureRecord, foundKeywords []string) []string
}

type Digest struct {
	Listings  ListingFetcher
	Summaries Summarizer
	History   HistoryFilter
	Workers   int
	Logger    *slog.Logger
}

// Run returns the new matches for date with their summaries, in listing order.
func (d *Digest) Run(ctx context.Context, date string, keywords []string) ([]types.SummarizedMatch, error) {
	if !tdnet.ValidDate(date) {
		return nil, fmt.Errorf("date must be in YYYYMMDD format: %q", date)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}

	listing, err := d.Listings.FetchAll(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for %s: %w", date, err)
	}
	if listing.Truncated {
		d.Logger.Warn("listing was truncated by a page error, digest may be incomplete", "date", date)
	}

	matches := FindMatches(listing.Records, date, keywords)
	d.Logger.Info("keyword matches", "date", date, "disclosures", len(listing.Records), "matches", len(matches))

	if d.History != nil {
		matches = d.filterReported(matches)
	}

	return d.summarize(ctx, matches), nil
}

// FindMatches returns the records whose title contains any of keywords, ignoring case.
func FindMatches(records []types.DisclosureRecord, date string, keywords []string) []types.Match {
	var matches []types.Match
	for _, rec := range records {
		if found := findKeywords(rec.Title, keywords); len(found) > 0 {
			matches = append(matches, types.Match{DisclosureRecord: rec, Date: date, KeywordsFound: found})
		}
	}
	return matches
}

func findKeywords(title string, keywords []string) []string {
	lowerTitle := strings.ToLower(title)

	var found []string
	for _, kw := range keywords {
		if strings.Contains(lowerTitle, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

func (d *Digest) filterReported(matches []types.Match) []types.Match {
	var fresh []types.Match
	for _, m := range matches {
		if kws := d.History.FilterNewMatches(m.DisclosureRecord, m.KeywordsFound); len(kws) > 0 {
			m.KeywordsFound = kws
			fresh = append(fresh, m)
		}
	}
	return fresh
}

func (d *Digest) summarize(ctx context.Context, matches []types.Match) []types.SummarizedMatch {
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]types.SummarizedMatch, len(matches))
	sem := make(chan struct{}, workers)
	total := len(matches)
	processedCount := 0
	var processedMutex sync.Mutex
	var wg sync.WaitGroup

	for i, m := range matches {
		results[i] = types.SummarizedMatch{Match: m}
		if m.PDF() == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, m types.Match) {
			defer wg.Done()
			defer func() { <-sem }()

			processedMutex.Lock()
			processedCount++
			d.Logger.Info("summarizing", "progress", fmt.Sprintf("%d/%d", processedCount, total), "code", m.Code)
			processedMutex.Unlock()

			res, err := d.Summaries.Summarize(ctx, m.PDF(), m.Title)
			if err != nil {
				d.Logger.Error("error summarizing disclosure", "code", m.Code, "title", m.Title, "error", err)
				return
			}
			results[i].Result = res
		}(i, m)
	}

	wg.Wait()
	d.Logger.Info("done summarizing", "matches", total)

	return results
}
