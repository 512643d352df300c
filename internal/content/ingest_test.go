package content

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/ai"
)

type stubSummarizer struct {
	sum *ai.Summary
	err error
}

func (s *stubSummarizer) Summarize(context.Context, ai.SummarizeInput) (*ai.Summary, error) {
	return s.sum, s.err
}

func TestSummarizeOrFallbackUsesSummarizer(t *testing.T) {
	svc := &Service{
		Summarizer: &stubSummarizer{sum: &ai.Summary{Summary: "ai summary", Model: "gemini-2.0-flash"}},
		Log:        slog.New(slog.DiscardHandler),
	}

	got := svc.summarizeOrFallback(context.Background(), "Title", "desc", "text")
	require.NotNil(t, got)
	assert.Equal(t, "ai summary", got.Summary)
	assert.False(t, got.IsFallback)
}

func TestSummarizeOrFallbackDegradesOnError(t *testing.T) {
	svc := &Service{
		Summarizer: &stubSummarizer{err: errors.New("quota exceeded")},
		Log:        slog.New(slog.DiscardHandler),
	}

	desc := "A long enough description that should be used verbatim as the summary text."
	got := svc.summarizeOrFallback(context.Background(), "Go Tutorial", desc, "Go is a language. It enables concurrency.")
	require.NotNil(t, got)
	assert.True(t, got.IsFallback)
	assert.Equal(t, "fallback-extraction", got.Model)
	assert.Equal(t, desc, got.Summary)
	assert.NotEmpty(t, got.Tags)
}

func TestSummarizeOrFallbackWithoutSummarizer(t *testing.T) {
	svc := &Service{Log: slog.New(slog.DiscardHandler)}

	got := svc.summarizeOrFallback(context.Background(), "Title", "short", "text")
	require.NotNil(t, got)
	assert.True(t, got.IsFallback)
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"Go", "API"}, []string{"go", "web", ""}, 10)
	assert.Equal(t, []string{"go", "api", "web"}, got)
}

func TestMergeTagsCaps(t *testing.T) {
	got := MergeTags([]string{"a", "b", "c"}, []string{"d", "e"}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
