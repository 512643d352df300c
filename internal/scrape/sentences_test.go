package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	got := Sentences("First sentence. Second one! Third? trailing without punctuation")
	assert.Equal(t, []string{"First sentence.", "Second one!", "Third?"}, got)
}

func TestSentencesEmpty(t *testing.T) {
	assert.Empty(t, Sentences(""))
	assert.Empty(t, Sentences("no terminal punctuation at all"))
}

func TestMeaningfulSentencesPrefersDefinitions(t *testing.T) {
	text := strings.Join([]string{
		"Go is a statically typed language designed at Google for building systems.",
		"Ok.",
		"The weather report for the region remains unchanged this whole long week again today.",
	}, " ")

	got := MeaningfulSentences(text, 1)
	assert.Len(t, got, 1)
	assert.Contains(t, got[0], "Go is a statically typed")
}

func TestMeaningfulSentencesFiltersNoise(t *testing.T) {
	text := "This source was retrieved from wikipedia on an unknown date by some researcher. " +
		"Concurrency enables programs to make progress on several tasks at the same moment."
	got := MeaningfulSentences(text, 5)
	for _, s := range got {
		assert.NotContains(t, strings.ToLower(s), "wikipedia")
	}
}

func TestKeywordTags(t *testing.T) {
	tags := KeywordTags("Intro to Python", "A Django tutorial covering REST API design with a Postgres database.")
	assert.Contains(t, tags, "python")
	assert.Contains(t, tags, "api")
	assert.Contains(t, tags, "database")
	assert.Contains(t, tags, "tutorial")
}

func TestKeywordTagsFallback(t *testing.T) {
	assert.Equal(t, []string{"article"}, KeywordTags("Gardening", "Planting tomatoes in spring."))
}

func TestCleanText(t *testing.T) {
	got := CleanText("line one\n\n\n\n  line two  \t\n")
	assert.NotContains(t, got, "\n\n\n")
	assert.Contains(t, got, "line one")
	assert.Contains(t, got, "line two")
}
