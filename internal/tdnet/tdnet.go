/*
Package tdnet retrieves daily disclosure listings from the TDnet portal and downloads and
extracts the text of individual disclosure PDFs.
*/
package tdnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/shanehull/tdnetviewer/internal/types"
)

const (
	DefaultBaseURL  = "https://www.release.tdnet.info"
	DefaultMaxPages = 50
	requestTimeout  = 30 * time.Second

	// BrowserUserAgent is sent with every outbound request; the portal rejects obvious bots.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var dateRe = regexp.MustCompile(`^\d{8}$`)

// ValidDate reports whether date has the YYYYMMDD shape the portal uses in listing URLs.
func ValidDate(date string) bool {
	return dateRe.MatchString(date)
}

// PageURL returns the listing URL for a 1-based page of date.
func PageURL(baseURL string, page int, date string) string {
	return fmt.Sprintf("%s/inbs/I_list_%03d_%s.html", baseURL, page, date)
}

// PageOutcome classifies a single page fetch.
type PageOutcome string

const (
	PageOK       PageOutcome = "ok"
	PageEmpty    PageOutcome = "empty"
	PageNotFound PageOutcome = "not_found"
	PageError    PageOutcome = "error"
)

type PageResult struct {
	Page    int
	URL     string
	Outcome PageOutcome
	Records []types.DisclosureRecord
	Err     error
}

// ErrorPolicy decides what FetchAll does when a page fails to load.
type ErrorPolicy string

const (
	// PolicyTruncate ends pagination and returns what was collected so far.
	PolicyTruncate ErrorPolicy = "truncate"
	// PolicyFail returns a *PageFetchError to the caller.
	PolicyFail ErrorPolicy = "fail"
)

// ParseErrorPolicy maps a config string to an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case PolicyTruncate, "":
		return PolicyTruncate, nil
	case PolicyFail:
		return PolicyFail, nil
	}
	return "", fmt.Errorf("unknown page error policy %q", s)
}

// StopReason records why pagination ended.
type StopReason string

const (
	StopNoData   StopReason = "no_data"
	StopNotFound StopReason = "not_found"
	StopError    StopReason = "error"
	StopMaxPages StopReason = "max_pages"
)

// Listing is the aggregated result of paging through one date.
type Listing struct {
	Date       string
	Records    []types.DisclosureRecord
	Pages      int // pages requested, including the terminating one
	StopReason StopReason
	Truncated  bool
}

// PageFetchError is returned by FetchAll under PolicyFail.
type PageFetchError struct {
	Page int
	URL  string
	Err  error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("failed to fetch listing page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *PageFetchError) Unwrap() error { return e.Err }

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("received non-OK status code %d", e.code)
}

// Fetcher pages through the daily listing of the portal.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	maxPages int
	policy   ErrorPolicy
	logger   *slog.Logger
	observe  func(PageOutcome)
}

type Option func(*Fetcher)

func WithBaseURL(u string) Option { return func(f *Fetcher) { f.baseURL = u } }

func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

func WithMaxPages(n int) Option { return func(f *Fetcher) { f.maxPages = n } }

func WithErrorPolicy(p ErrorPolicy) Option { return func(f *Fetcher) { f.policy = p } }

func WithLogger(l *slog.Logger) Option { return func(f *Fetcher) { f.logger = l } }

// WithPageObserver registers a callback invoked once per page attempt.
func WithPageObserver(fn func(PageOutcome)) Option { return func(f *Fetcher) { f.observe = fn } }

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: requestTimeout},
		baseURL:  DefaultBaseURL,
		maxPages: DefaultMaxPages,
		policy:   PolicyTruncate,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxPages <= 0 {
		f.maxPages = DefaultMaxPages
	}
	return f
}

func (f *Fetcher) BaseURL() string { return f.baseURL }

// FetchAll requests pages 1, 2, ... of date until a page yields no records. Pages are
// fetched strictly in order because the existence of page N is only known from page N-1.
func (f *Fetcher) FetchAll(ctx context.Context, date string) (*Listing, error) {
	listing := &Listing{Date: date}

	for page := 1; ; page++ {
		if page > f.maxPages {
			f.logger.Warn("reached maximum page limit", "date", date, "max_pages", f.maxPages)
			listing.StopReason = StopMaxPages
			break
		}

		res := f.FetchPage(ctx, date, page)
		listing.Pages = page

		if res.Outcome == PageOK {
			listing.Records = append(listing.Records, res.Records...)
			continue
		}

		switch res.Outcome {
		case PageEmpty:
			listing.StopReason = StopNoData
			f.logger.Info("no data found, stopping pagination", "date", date, "page", page, "outcome", res.Outcome)
		case PageNotFound:
			listing.StopReason = StopNotFound
			f.logger.Info("no data found, stopping pagination", "date", date, "page", page, "outcome", res.Outcome)
		case PageError:
			if f.policy == PolicyFail {
				return nil, &PageFetchError{Page: page, URL: res.URL, Err: res.Err}
			}
			f.logger.Warn("listing page failed, returning partial results",
				"date", date, "page", page, "url", res.URL, "error", res.Err)
			listing.StopReason = StopError
			listing.Truncated = true
		}
		break
	}

	f.logger.Info("listing complete", "date", date, "records", len(listing.Records), "pages", listing.Pages)
	return listing, nil
}

// FetchPage requests and extracts one listing page. It never returns an error directly;
// failures are reported through the PageResult outcome.
func (f *Fetcher) FetchPage(ctx context.Context, date string, page int) PageResult {
	url := PageURL(f.baseURL, page, date)
	res := PageResult{Page: page, URL: url}

	f.logger.Debug("scraping page", "page", page, "url", url)

	records, err := f.get(ctx, url, date)
	switch {
	case err == nil && len(records) > 0:
		res.Outcome = PageOK
		res.Records = records
	case err == nil:
		res.Outcome = PageEmpty
	default:
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			res.Outcome = PageNotFound
		} else {
			res.Outcome = PageError
			res.Err = err
		}
	}

	if f.observe != nil {
		f.observe(res.Outcome)
	}
	return res
}

func (f *Fetcher) get(ctx context.Context, url, date string) ([]types.DisclosureRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("failed to close response body", "url", url, "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	return ParseRecords(resp.Body, date, f.baseURL)
}
