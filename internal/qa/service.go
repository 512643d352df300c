// Package qa answers natural-language questions from the user's own saved
// content. Retrieval is full-text first with a naive keyword fallback; answer
// generation degrades to an extractive snippet when the model is unavailable.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"secondbrain/internal/apperr"
	"secondbrain/internal/content"
	"secondbrain/internal/scrape"
)

// Answerer is satisfied by ai.Client.
type Answerer interface {
	Answer(ctx context.Context, question, contextBlock string) (string, error)
}

type Service struct {
	Contents *content.Service
	Answerer Answerer
	Log      *slog.Logger
}

func NewService(contents *content.Service, answerer Answerer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Contents: contents, Answerer: answerer, Log: log}
}

type AskInput struct {
	Question string   `json:"question"`
	Tags     []string `json:"tags"`
	Limit    int      `json:"limit"`
}

type Source struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	URL       string    `json:"url,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Relevance int       `json:"relevance"`
	CreatedAt time.Time `json:"createdAt"`
}

type Answer struct {
	Answer       string    `json:"answer"`
	Sources      []Source  `json:"sources"`
	Confidence   float64   `json:"confidence"`
	ContentCount int       `json:"contentCount"`
	Timestamp    time.Time `json:"timestamp"`
}

func (s *Service) Ask(ctx context.Context, userID uint64, in AskInput) (*Answer, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, apperr.Validation("question is required")
	}
	limit := in.Limit
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	candidates, err := s.Contents.SearchRanked(ctx, userID, question, in.Tags, limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = s.keywordFallback(ctx, userID, question, in.Tags, limit)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if len(candidates) == 0 {
		return &Answer{
			Answer:       "I couldn't find any saved content related to your question. Try saving some relevant articles or notes first.",
			Sources:      []Source{},
			Confidence:   0,
			ContentCount: 0,
			Timestamp:    now,
		}, nil
	}

	contextBlock := buildContext(candidates)
	answer := s.generateAnswer(ctx, question, contextBlock)

	return &Answer{
		Answer:       answer,
		Sources:      makeSources(candidates),
		Confidence:   confidence(len(candidates)),
		ContentCount: len(candidates),
		Timestamp:    now,
	}, nil
}

const snippetLen = 200

// makeSources cites the candidates in rank order. The snippet prefers the
// stored summary and falls back to the leading body text.
func makeSources(items []content.Content) []Source {
	out := make([]Source, len(items))
	for i, c := range items {
		out[i] = Source{
			ID:        c.ID,
			Title:     c.Title,
			Type:      string(c.Type),
			URL:       c.SourceURL,
			Snippet:   snippet(c),
			Tags:      []string(c.Tags),
			Relevance: i + 1,
			CreatedAt: c.CreatedAt,
		}
	}
	return out
}

func snippet(c content.Content) string {
	if c.Summary != "" {
		return c.Summary
	}
	if len(c.Body) > snippetLen {
		return c.Body[:snippetLen]
	}
	return c.Body
}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// keywordFallback scores recent content by how many question keywords appear
// in its text. Keywords shorter than 4 characters carry no signal.
func (s *Service) keywordFallback(ctx context.Context, userID uint64, question string, tags []string, limit int) ([]content.Content, error) {
	var keywords []string
	for _, w := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	recent, err := s.Contents.Recent(ctx, userID, tags, 2*limit)
	if err != nil {
		return nil, err
	}

	type scored struct {
		item  content.Content
		score int
	}
	var ranked []scored
	for _, c := range recent {
		text := strings.ToLower(c.Title + " " + c.Summary + " " + c.Body)
		score := 0
		for _, kw := range keywords {
			score += strings.Count(text, kw)
		}
		if score > 0 {
			ranked = append(ranked, scored{c, score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]content.Content, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out, nil
}

const bodyExcerptLen = 800

func buildContext(items []content.Content) string {
	var sb strings.Builder
	for i, c := range items {
		fmt.Fprintf(&sb, "Source %d: %s\n", i+1, c.Title)
		fmt.Fprintf(&sb, "Type: %s\n", c.Type)
		if c.SourceURL != "" {
			fmt.Fprintf(&sb, "URL: %s\n", c.SourceURL)
		}
		if c.Summary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", c.Summary)
		}
		if len(c.KeyPoints) > 0 {
			sb.WriteString("Key points:\n")
			points := c.KeyPoints
			if len(points) > 5 {
				points = points[:5]
			}
			for _, p := range points {
				fmt.Fprintf(&sb, "- %s\n", p)
			}
		}
		if c.Body != "" {
			body := c.Body
			if len(body) > bodyExcerptLen {
				body = body[:bodyExcerptLen] + "..."
			}
			fmt.Fprintf(&sb, "Content excerpt: %s\n", body)
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(c.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// generateAnswer asks the model and falls back to an extractive snippet of
// the context when generation is unavailable or fails.
func (s *Service) generateAnswer(ctx context.Context, question, contextBlock string) string {
	if s.Answerer != nil {
		answer, err := s.Answerer.Answer(ctx, question, contextBlock)
		if err == nil {
			return answer
		}
		s.Log.Warn("answer generation failed, using extractive fallback", "error", err)
	}

	sentences := scrape.Sentences(contextBlock)
	if len(sentences) > 5 {
		sentences = sentences[:5]
	}
	fallback := scrape.JoinSentences(sentences)
	if fallback == "" {
		fallback = contextBlock
	}
	return "Based on your saved content:\n\n" + fallback
}

// confidence is a step function of how many sources were found, a rough
// proxy rather than a calibrated probability.
func confidence(n int) float64 {
	switch {
	case n == 0:
		return 0
	case n >= 5:
		return 0.95
	case n >= 3:
		return 0.85
	case n >= 2:
		return 0.7
	default:
		return 0.5
	}
}
