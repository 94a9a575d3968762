// Package acquire turns raw document sources (web pages, PDF files) into
// plain text for the ingestion pipeline.
//
// Acquisition is best-effort by contract: every failure resolves to an
// empty string, never an error into the core. The ingestion pipeline skips
// empty documents and keeps going.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dslipak/pdf"
	readability "github.com/go-shiori/go-readability"

	"github.com/team-sapphire/vayazh/internal/knowledge"
	"github.com/team-sapphire/vayazh/internal/log"
)

const (
	fetchTimeout    = 30 * time.Second
	maxResponseSize = 10 << 20 // 10 MB cap against oversized pages
)

// Fetcher acquires document text from external sources.
type Fetcher struct {
	httpc  *http.Client
	logger log.Logger
}

// NewFetcher creates a Fetcher with a timeout-bounded HTTP client.
func NewFetcher(logger log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Fetcher{
		httpc:  &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// FetchWebsite downloads a page and extracts its readable text content.
// go-readability strips navigation and boilerplate; when it finds nothing,
// a plain goquery text extraction of the body is used instead. Returns ""
// on any failure.
func (f *Fetcher) FetchWebsite(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Warn("invalid document URL", "url", rawURL, "error", err)
		return ""
	}

	resp, err := f.httpc.Do(req)
	if err != nil {
		f.logger.Warn("fetching document failed", "url", rawURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("fetching document failed", "url", rawURL, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		f.logger.Warn("reading document body failed", "url", rawURL, "error", err)
		return ""
	}

	pageURL, _ := url.Parse(rawURL)
	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	// Not article-shaped; fall back to the raw body text.
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.logger.Warn("parsing document HTML failed", "url", rawURL, "error", err)
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Find("body").Text())
}

// ExtractPDF extracts the plain text of a local PDF file. Returns "" on
// any failure.
func (f *Fetcher) ExtractPDF(path string) string {
	reader, err := pdf.Open(path)
	if err != nil {
		f.logger.Warn("opening PDF failed", "path", path, "error", err)
		return ""
	}

	content, err := reader.GetPlainText()
	if err != nil {
		f.logger.Warn("extracting PDF text failed", "path", path, "error", err)
		return ""
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		f.logger.Warn("reading PDF text failed", "path", path, "error", err)
		return ""
	}
	return buf.String()
}

// Sources resolves the configured corpus into the startup document batch.
// Sources that fail acquisition contribute an empty document, which the
// ingestion pipeline skips.
func (f *Fetcher) Sources(ctx context.Context, urls, pdfs []string) []knowledge.SourceDocument {
	docs := make([]knowledge.SourceDocument, 0, len(urls)+len(pdfs))

	for _, u := range urls {
		docs = append(docs, knowledge.SourceDocument{ID: u, Text: f.FetchWebsite(ctx, u)})
	}
	for i, path := range pdfs {
		docs = append(docs, knowledge.SourceDocument{
			ID:   fmt.Sprintf("pdf:%d:%s", i, path),
			Text: f.ExtractPDF(path),
		})
	}

	return docs
}
