package qa

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/content"
)

func TestConfidenceSteps(t *testing.T) {
	tests := []struct {
		sources int
		want    float64
	}{
		{0, 0},
		{1, 0.5},
		{2, 0.7},
		{3, 0.85},
		{4, 0.85},
		{5, 0.95},
		{9, 0.95},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confidence(tt.sources), "sources=%d", tt.sources)
	}
}

func TestBuildContext(t *testing.T) {
	items := []content.Content{
		{
			Title:     "Go Concurrency",
			Type:      content.TypeLink,
			SourceURL: "https://example.com/go",
			Summary:   "Goroutines and channels.",
			KeyPoints: pq.StringArray{"goroutines are cheap", "channels synchronize"},
			Body:      "Body text about concurrency.",
			Tags:      pq.StringArray{"go", "concurrency"},
		},
		{Title: "Notes", Type: content.TypeText, Body: "plain notes"},
	}

	ctx := buildContext(items)
	assert.Contains(t, ctx, "Source 1: Go Concurrency")
	assert.Contains(t, ctx, "Source 2: Notes")
	assert.Contains(t, ctx, "URL: https://example.com/go")
	assert.Contains(t, ctx, "- goroutines are cheap")
	assert.Contains(t, ctx, "Tags: go, concurrency")
}

func TestBuildContextTruncatesBody(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	ctx := buildContext([]content.Content{{Title: "Big", Body: string(long)}})
	assert.Contains(t, ctx, "...")
	assert.Less(t, len(ctx), 1000)
}

func TestMakeSources(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []content.Content{
		{
			ID:        7,
			Title:     "Go Concurrency",
			Type:      content.TypeLink,
			SourceURL: "https://example.com/go",
			Summary:   "Goroutines and channels.",
			Body:      "full body text",
			Tags:      pq.StringArray{"go", "concurrency"},
			CreatedAt: created,
		},
		{ID: 8, Title: "Notes", Type: content.TypeText, Body: strings.Repeat("b", 300)},
	}

	sources := makeSources(items)
	require.Len(t, sources, 2)

	assert.Equal(t, uint64(7), sources[0].ID)
	assert.Equal(t, "link", sources[0].Type)
	assert.Equal(t, "Goroutines and channels.", sources[0].Snippet, "summary wins over body")
	assert.Equal(t, []string{"go", "concurrency"}, sources[0].Tags)
	assert.Equal(t, 1, sources[0].Relevance)
	assert.Equal(t, created, sources[0].CreatedAt)

	assert.Equal(t, 2, sources[1].Relevance)
	assert.Equal(t, strings.Repeat("b", snippetLen), sources[1].Snippet, "no summary, leading body text")
}

type stubAnswerer struct {
	answer string
	err    error
}

func (s *stubAnswerer) Answer(context.Context, string, string) (string, error) {
	return s.answer, s.err
}

func TestGenerateAnswerFromModel(t *testing.T) {
	svc := &Service{
		Answerer: &stubAnswerer{answer: "According to Source 1, goroutines are cheap."},
		Log:      slog.New(slog.DiscardHandler),
	}
	got := svc.generateAnswer(context.Background(), "what are goroutines?", "Source 1: ...")
	assert.Equal(t, "According to Source 1, goroutines are cheap.", got)
}

func TestGenerateAnswerFallsBackOnError(t *testing.T) {
	svc := &Service{
		Answerer: &stubAnswerer{err: errors.New("model unavailable")},
		Log:      slog.New(slog.DiscardHandler),
	}
	got := svc.generateAnswer(context.Background(), "q", "Source 1: Goroutines are cheap threads. They multiplex onto OS threads.")
	assert.Contains(t, got, "Based on your saved content")
	assert.Contains(t, got, "Goroutines are cheap threads.")
}

func TestGenerateAnswerWithoutAnswerer(t *testing.T) {
	svc := &Service{Log: slog.New(slog.DiscardHandler)}
	got := svc.generateAnswer(context.Background(), "q", "One sentence here.")
	assert.Contains(t, got, "One sentence here.")
}
