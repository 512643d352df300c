// Package scrape fetches web pages and extracts readable text plus metadata
// for link ingestion. It also carries the extractive fallbacks used when the
// AI summarizer is unavailable.
package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"secondbrain/internal/apperr"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes = 5 << 20
	wordsPerMin  = 200
)

type Result struct {
	URL            string
	Title          string
	Description    string
	Author         string
	PublishedAt    string
	Image          string
	Content        string // cleaned readable text
	WordCount      int
	ReadingTimeMin int
	ScrapedAt      time.Time
}

type Scraper struct {
	client *http.Client
	log    *slog.Logger
}

func New(timeout time.Duration, log *slog.Logger) *Scraper {
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Scrape fetches the page and extracts title, readable text and metadata.
// Only http and https are accepted. Network failures map to distinct
// user-facing messages; none of them are retried here.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperr.Validation("invalid URL: must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Validation("invalid URL")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, mapFetchErr(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, apperr.Upstream("access forbidden: the website blocked our request", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.Upstream("page not found (404)", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperr.Upstream("failed to fetch URL: unexpected response", nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Upstream("failed to read page body", err)
	}
	html := string(body)

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return nil, apperr.Upstream("failed to extract readable content", err)
	}

	res := &Result{
		URL:       rawURL,
		Title:     strings.TrimSpace(article.Title),
		Content:   CleanText(article.TextContent),
		ScrapedAt: time.Now(),
	}

	s.fillMeta(res, html)

	if res.Title == "" {
		res.Title = "Untitled Document"
	}
	if res.Description == "" {
		res.Description = strings.TrimSpace(article.Excerpt)
	}
	if res.Image == "" {
		res.Image = article.Image
	}

	res.WordCount = len(strings.Fields(res.Content))
	res.ReadingTimeMin = int(math.Ceil(float64(res.WordCount) / wordsPerMin))

	s.log.Info("scraped page", "url", rawURL, "title", res.Title, "words", res.WordCount)
	return res, nil
}

// fillMeta pulls author, publish date, description and image from meta tags.
func (s *Scraper) fillMeta(res *Result, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	if res.Title == "" {
		res.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if res.Title == "" {
		res.Title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}

	res.Description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	if res.Description == "" {
		res.Description, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}

	res.Author, _ = doc.Find(`meta[name="author"]`).Attr("content")
	if res.Author == "" {
		res.Author, _ = doc.Find(`meta[property="article:author"]`).Attr("content")
	}

	res.PublishedAt, _ = doc.Find(`meta[property="article:published_time"]`).Attr("content")
	if res.PublishedAt == "" {
		res.PublishedAt, _ = doc.Find("time").Attr("datetime")
	}

	res.Image, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
	if res.Image == "" {
		res.Image, _ = doc.Find(`meta[name="twitter:image"]`).Attr("content")
	}
}

func mapFetchErr(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.Upstream("URL not found: please check the URL and try again", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Upstream("request timeout: the website took too long to respond", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream("request timeout: the website took too long to respond", err)
	}
	return apperr.Upstream("failed to fetch URL", err)
}

// CleanText collapses runs of whitespace left over from HTML extraction.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
