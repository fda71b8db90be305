package tdnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	pdfDownloadTimeout   = 30 * time.Second
	pdfProcessingTimeout = 60 * time.Second
	maxPDFSize           = 50 << 20
)

// DownloadKind classifies a failed PDF download.
type DownloadKind int

const (
	KindOther DownloadKind = iota
	// KindUnreachable covers host-not-found and connection-refused failures.
	KindUnreachable
	KindTimeout
	KindStatus
	KindTooLarge
)

// ErrPDFTooLarge is wrapped by a KindTooLarge DownloadError.
var ErrPDFTooLarge = errors.New("PDF exceeds the download size limit")

type DownloadError struct {
	Kind DownloadKind
	URL  string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download PDF from %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// PDFDownloader fetches disclosure PDFs over HTTP.
type PDFDownloader struct {
	client  *http.Client
	maxSize int64
}

// NewPDFDownloader returns a downloader with the fixed 30 second request timeout. A nil
// transport uses http.DefaultTransport.
func NewPDFDownloader(transport http.RoundTripper) *PDFDownloader {
	return &PDFDownloader{
		client:  &http.Client{Timeout: pdfDownloadTimeout, Transport: transport},
		maxSize: maxPDFSize,
	}
}

func (d *PDFDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{Kind: KindOther, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DownloadError{Kind: classifyDownloadError(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{Kind: KindStatus, URL: url, Err: &statusError{code: resp.StatusCode}}
	}

	pdfBytes, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, &DownloadError{Kind: classifyDownloadError(err), URL: url, Err: fmt.Errorf("failed to read PDF response body: %w", err)}
	}
	if int64(len(pdfBytes)) > d.maxSize {
		return nil, &DownloadError{Kind: KindTooLarge, URL: url, Err: fmt.Errorf("%w (%d bytes)", ErrPDFTooLarge, d.maxSize)}
	}
	return pdfBytes, nil
}

func classifyDownloadError(err error) DownloadKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnreachable
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindUnreachable
	}
	return KindOther
}

// PDFToText extracts text with poppler's pdftotext binary.
type PDFToText struct {
	Binary string
}

// ExtractText returns the plain text of pdf. Image-only or protected documents
// legitimately produce an empty string without error.
func (p PDFToText) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pdftotext"
	}

	ctx, cancel := context.WithTimeout(ctx, pdfProcessingTimeout)
	defer cancel()

	tmpFile, err := os.CreateTemp("", "tdnet_pdf_*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	if _, err := tmpFile.Write(pdf); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write PDF bytes to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary, "-raw", "-enc", "UTF-8", tmpFileName, "-")

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("PDF text extraction timed out after %s", pdfProcessingTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s binary not found, ensure poppler-utils is installed: %w", binary, err)
		}
		return "", fmt.Errorf("pdftotext failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return out.String(), nil
}
