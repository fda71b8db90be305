package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

type fakeListings struct {
	calls   int
	listing *tdnet.Listing
	err     error
}

func (f *fakeListings) FetchAll(ctx context.Context, date string) (*tdnet.Listing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

type fakeSummaries struct {
	calls  int
	title  string
	result *types.SummaryResult
	err    error
}

func (f *fakeSummaries) Summarize(ctx context.Context, pdfURL, title string) (*types.SummaryResult, error) {
	f.calls++
	f.title = title
	return f.result, f.err
}

func newTestRouter(l ListingFetcher, s Summarizer, staticDir string) (*gin.Engine, *prometheus.Registry) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	h := NewHandler(l, s, NewMetrics(reg), logger)
	return NewRouter(h, Options{StaticDir: staticDir, Gatherer: reg, Logger: logger}), reg
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func strPtr(s string) *string { return &s }

func TestGetListings_OK(t *testing.T) {
	listings := &fakeListings{listing: &tdnet.Listing{
		Date: "20250611",
		Records: []types.DisclosureRecord{
			{Time: "15:00", Code: "72030", CompanyName: "トヨタ自動車", Title: "決算短信", PDFURL: strPtr("https://x/a.pdf"), StockExchange: "東"},
			{Time: "15:30", Code: "99840", CompanyName: "ソフトバンクグループ", Title: "お知らせ", StockExchange: "東"},
		},
	}}
	r, _ := newTestRouter(listings, &fakeSummaries{}, "")

	w := postJSON(r, "/api/tdnet", `{"date":"20250611"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var res ListingResponse
	err := json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, res.Success)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "20250611", res.Date)
	assert.Equal(t, "https://x/a.pdf", res.Data[0].PDF())

	assert.Equal(t, true, strings.Contains(w.Body.String(), `"pdf_url":null`))
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"company_name":"トヨタ自動車"`))
}

func TestGetListings_EmptyDataIsArray(t *testing.T) {
	listings := &fakeListings{listing: &tdnet.Listing{Date: "20250101"}}
	r, _ := newTestRouter(listings, &fakeSummaries{}, "")

	w := postJSON(r, "/api/tdnet", `{"date":"20250101"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"data":[]`))
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"count":0`))
}

func TestGetListings_InvalidInput(t *testing.T) {
	cases := []struct {
		body string
		msg  string
	}{
		{`{}`, msgDateRequired},
		{`{"date":""}`, msgDateRequired},
		{`{"date":"2025-06-11"}`, msgDateFormat},
		{`{"date":"2025061"}`, msgDateFormat},
		{`not json`, msgBadRequest},
	}

	for _, tc := range cases {
		listings := &fakeListings{}
		r, _ := newTestRouter(listings, &fakeSummaries{}, "")

		w := postJSON(r, "/api/tdnet", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, tc.msg, errorBody(t, w))
		assert.Equal(t, 0, listings.calls)
	}
}

func TestGetListings_UpstreamErrors(t *testing.T) {
	pageErr := &tdnet.PageFetchError{Page: 2, URL: "u", Err: errors.New("503")}
	r, _ := newTestRouter(&fakeListings{err: pageErr}, &fakeSummaries{}, "")

	w := postJSON(r, "/api/tdnet", `{"date":"20250611"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, msgListingFailed, errorBody(t, w))

	r, _ = newTestRouter(&fakeListings{err: errors.New("boom")}, &fakeSummaries{}, "")
	w = postJSON(r, "/api/tdnet", `{"date":"20250611"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgListingFailed, errorBody(t, w))
}

func TestGetSummary_OK(t *testing.T) {
	n := 1234
	summaries := &fakeSummaries{result: &types.SummaryResult{Success: true, Summary: "要約", TextLength: &n, Method: types.MethodAI}}
	r, _ := newTestRouter(&fakeListings{}, summaries, "")

	w := postJSON(r, "/api/summary", `{"pdfUrl":"https://www.release.tdnet.info/inbs/a.pdf","title":"決算短信"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "決算短信", summaries.title)

	var res types.SummaryResult
	err := json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, nil, err)
	assert.Equal(t, "要約", res.Summary)
	assert.Equal(t, 1234, *res.TextLength)
	assert.Equal(t, types.MethodAI, res.Method)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"textLength":1234`))
}

func TestGetSummary_ApologyOmitsOptionalFields(t *testing.T) {
	summaries := &fakeSummaries{result: &types.SummaryResult{Success: true, Summary: "申し訳ございません"}}
	r, _ := newTestRouter(&fakeListings{}, summaries, "")

	w := postJSON(r, "/api/summary", `{"pdfUrl":"https://x/a.pdf"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, strings.Contains(w.Body.String(), "textLength"))
	assert.Equal(t, false, strings.Contains(w.Body.String(), "method"))
}

func TestGetSummary_InvalidInput(t *testing.T) {
	cases := []struct {
		body string
		msg  string
	}{
		{`{"title":"t"}`, msgPDFURLRequired},
		{`{"pdfUrl":"ftp://x/a.pdf"}`, msgPDFURLInvalid},
		{`{"pdfUrl":"a.pdf"}`, msgPDFURLInvalid},
		{`[`, msgBadRequest},
	}

	for _, tc := range cases {
		summaries := &fakeSummaries{}
		r, _ := newTestRouter(&fakeListings{}, summaries, "")

		w := postJSON(r, "/api/summary", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, tc.msg, errorBody(t, w))
		assert.Equal(t, 0, summaries.calls)
	}
}

func TestGetSummary_ErrorMessages(t *testing.T) {
	cases := []struct {
		err error
		msg string
	}{
		{&tdnet.DownloadError{Kind: tdnet.KindUnreachable, Err: errors.New("refused")}, msgDownloadFailed},
		{&tdnet.DownloadError{Kind: tdnet.KindTimeout, Err: context.DeadlineExceeded}, msgDownloadTimeout},
		{&tdnet.DownloadError{Kind: tdnet.KindStatus, Err: errors.New("404")}, msgSummaryFailed},
		{errors.New("extraction failed"), msgSummaryFailed},
	}

	for _, tc := range cases {
		r, _ := newTestRouter(&fakeListings{}, &fakeSummaries{err: tc.err}, "")

		w := postJSON(r, "/api/summary", `{"pdfUrl":"https://x/a.pdf","title":"t"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, tc.msg, errorBody(t, w))
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(&fakeListings{}, &fakeSummaries{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/tdnet", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRootBannerAndHealth(t *testing.T) {
	r, _ := newTestRouter(&fakeListings{}, &fakeSummaries{}, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), serviceBanner))
	assert.NotEqual(t, "", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>TDnet</h1>"), 0o644)
	assert.Equal(t, nil, err)
	err = os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, StaticDirExists(dir))

	r, _ := newTestRouter(&fakeListings{}, &fakeSummaries{}, dir)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>TDnet</h1>", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(&fakeListings{listing: &tdnet.Listing{}}, &fakeSummaries{}, "")
	postJSON(r, "/api/tdnet", `{"date":"20250611"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, bytes.Contains(w.Body.Bytes(), []byte(`tdnet_http_request_duration_seconds_count{route="/api/tdnet",status="200"} 1`)))
}
