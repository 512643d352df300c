package content

import (
	"context"
	"time"

	"secondbrain/internal/ai"
	"secondbrain/internal/apperr"
	"secondbrain/internal/scrape"
)

// Scraper fetches and extracts readable text from a web page. Implemented by
// scrape.Scraper; an interface so ingestion tests can stub the network.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (*scrape.Result, error)
}

// Summarizer produces the optional AI enrichment. Implemented by ai.Client.
type Summarizer interface {
	Summarize(ctx context.Context, in ai.SummarizeInput) (*ai.Summary, error)
}

const (
	maxStoredBody = 10000
	maxTags       = 10
)

// CreateFromURL ingests a web page: scrape, enrich, dedup, persist. Scraping
// failures are fatal; enrichment failures degrade to an extractive summary so
// ingestion never fails only because the summarizer did.
func (s *Service) CreateFromURL(ctx context.Context, userID uint64, rawURL string, userTags []string) (*Content, error) {
	// Duplicate URL guard before any network work.
	var n int64
	err := s.DB.WithContext(ctx).Model(&Content{}).
		Where("user_id = ? AND type = ? AND source_url = ? AND is_deleted = false",
			userID, TypeLink, rawURL).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.Conflict("a content item with this URL already exists")
	}

	page, err := s.Scraper.Scrape(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	sum := s.summarizeOrFallback(ctx, page.Title, page.Description, page.Content)

	meta := LinkMetadata{
		Author:            page.Author,
		PublishedAt:       page.PublishedAt,
		Image:             page.Image,
		WordCount:         page.WordCount,
		ReadingTimeMin:    page.ReadingTimeMin,
		ScrapedAt:         page.ScrapedAt,
		IsFallbackSummary: sum.IsFallback,
		AIModel:           sum.Model,
	}
	if !sum.IsFallback {
		now := time.Now()
		meta.SummarizedAt = &now
	}

	return s.Create(ctx, userID, CreateInput{
		Type:      TypeLink,
		Title:     page.Title,
		Body:      truncate(page.Content, maxStoredBody),
		SourceURL: rawURL,
		Tags:      MergeTags(sum.Tags, userTags, maxTags),
		Summary:   sum.Summary,
		KeyPoints: sum.KeyPoints,
		Metadata:  marshalMetadata(meta),
	})
}

// summarizeOrFallback asks the summarizer for prose summary, key points and
// tags, degrading to extractive heuristics when it is unavailable or fails.
func (s *Service) summarizeOrFallback(ctx context.Context, title, description, text string) *ai.Summary {
	if s.Summarizer != nil {
		sum, err := s.Summarizer.Summarize(ctx, ai.SummarizeInput{
			Title:       title,
			Description: description,
			Content:     text,
		})
		if err == nil {
			return sum
		}
		s.Log.Warn("summarizer failed, falling back to extraction", "err", err)
	}

	summary := description
	if len(summary) < 50 {
		summary = scrape.JoinSentences(scrape.MeaningfulSentences(text, 3))
	}
	return &ai.Summary{
		Summary:    truncate(summary, 400),
		KeyPoints:  scrape.MeaningfulSentences(text, 5),
		Tags:       scrape.KeywordTags(title, text),
		IsFallback: true,
		Model:      "fallback-extraction",
	}
}

// MergeTags merges AI-derived and user-supplied tags, lowercased, deduplicated
// and capped.
func MergeTags(aiTags, userTags []string, limit int) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, limit)
	for _, t := range append(append([]string{}, aiTags...), userTags...) {
		t = normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
