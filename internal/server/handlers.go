package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

// User-facing error messages.
const (
	msgBadRequest      = "リクエストの形式が正しくありません。"
	msgDateRequired    = "日付を指定してください。"
	msgDateFormat      = "日付はYYYYMMDD形式で指定してください。"
	msgListingFailed   = "TDnetからのデータ取得に失敗しました。"
	msgPDFURLRequired  = "PDFのURLを指定してください。"
	msgPDFURLInvalid   = "PDFのURLが正しくありません。"
	msgDownloadFailed  = "PDFのダウンロードに失敗しました。URLが正しいか確認してください。"
	msgDownloadTimeout = "PDFのダウンロードがタイムアウトしました。"
	msgSummaryFailed   = "サマリーの生成に失敗しました。"
	msgInternalError   = "Internal server error"
	msgNotFound        = "Not found"
	serviceBanner      = "TDnet Viewer API is running"
	serviceVersion     = "1.0.0"
)

type ListingFetcher interface {
	FetchAll(ctx context.Context, date string) (*tdnet.Listing, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, pdfURL, title string) (*types.SummaryResult, error)
}

type Handler struct {
	listings  ListingFetcher
	summaries Summarizer
	metrics   *Metrics
	logger    *slog.Logger
}

func NewHandler(listings ListingFetcher, summaries Summarizer, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{listings: listings, summaries: summaries, metrics: metrics, logger: logger}
}

type listingRequest struct {
	Date string `json:"date"`
}

type ListingResponse struct {
	Success   bool                     `json:"success"`
	Data      []types.DisclosureRecord `json:"data"`
	Count     int                      `json:"count"`
	Date      string                   `json:"date"`
	Truncated bool                     `json:"truncated"`
}

func (h *Handler) GetListings(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	if req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDateRequired})
		return
	}
	if !tdnet.ValidDate(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDateFormat})
		return
	}

	h.logger.Info("fetching TDnet data", "date", req.Date)

	listing, err := h.listings.FetchAll(c.Request.Context(), req.Date)
	if err != nil {
		h.logger.Error("error fetching listings", "date", req.Date, "error", err)
		var pageErr *tdnet.PageFetchError
		if errors.As(err, &pageErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": msgListingFailed})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgListingFailed})
		return
	}

	data := listing.Records
	if data == nil {
		data = []types.DisclosureRecord{}
	}

	c.JSON(http.StatusOK, ListingResponse{
		Success:   true,
		Data:      data,
		Count:     len(data),
		Date:      req.Date,
		Truncated: listing.Truncated,
	})
}

func (h *Handler) GetSummary(c *gin.Context) {
	var req types.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	if req.PDFURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPDFURLRequired})
		return
	}
	if !validPDFURL(req.PDFURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPDFURLInvalid})
		return
	}

	result, err := h.summaries.Summarize(c.Request.Context(), req.PDFURL, req.Title)
	if err != nil {
		reason, msg := summaryErrorMessage(err)
		h.logger.Error("error generating summary", "pdf_url", req.PDFURL, "reason", reason, "error", err)
		h.metrics.observeSummaryError(reason)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	h.metrics.observeSummary(result.Method)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": serviceBanner, "version": serviceVersion})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func validPDFURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// summaryErrorMessage maps a summary failure to a metrics reason and a localized message.
func summaryErrorMessage(err error) (string, string) {
	var dlErr *tdnet.DownloadError
	if errors.As(err, &dlErr) {
		switch dlErr.Kind {
		case tdnet.KindUnreachable:
			return "download_unreachable", msgDownloadFailed
		case tdnet.KindTimeout:
			return "download_timeout", msgDownloadTimeout
		}
		return "download", msgSummaryFailed
	}
	return "summary", msgSummaryFailed
}
