package scrape

import (
	"regexp"
	"sort"
	"strings"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Sentences splits text on terminal punctuation. Crude, but only consumed by
// the extractive fallbacks where precision does not matter.
func Sentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func JoinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}

var importanceKeywords = []string{
	"important", "key", "main", "significant", "critical",
	"essential", "fundamental", "primary", "major", "crucial",
}

var definitionKeywords = []string{
	"is a", "is an", "refers to", "means", "defined as", "known as", "called",
}

var actionKeywords = []string{
	"allows", "enables", "provides", "supports", "helps", "makes",
	"creates", "designed to", "used for", "used to",
}

var noiseRe = regexp.MustCompile(`\[\d+\]|\[citation needed\]|retrieved|accessed|wikipedia|see also|external links|https?://`)

// MeaningfulSentences scores sentences by definition/action/importance cues,
// digits and position, filters citation noise, and returns the top n. This is
// the lower-quality summary used when the AI summarizer fails.
func MeaningfulSentences(text string, n int) []string {
	sentences := Sentences(text)

	type scored struct {
		sentence string
		score    int
		index    int
	}
	var candidates []scored

	for i, sent := range sentences {
		words := len(strings.Fields(sent))
		if words < 10 || words > 30 {
			continue
		}
		lower := strings.ToLower(sent)
		if noiseRe.MatchString(lower) {
			continue
		}

		score := 0
		for _, kw := range definitionKeywords {
			if strings.Contains(lower, kw) {
				score += 4
			}
		}
		for _, kw := range actionKeywords {
			if strings.Contains(lower, kw) {
				score += 3
			}
		}
		for _, kw := range importanceKeywords {
			if strings.Contains(lower, kw) {
				score += 3
			}
		}
		if strings.ContainsAny(sent, "0123456789") {
			score += 2
		}
		// Earlier sentences tend to carry the lede.
		switch {
		case i < len(sentences)/5:
			score += 3
		case i < 2*len(sentences)/5:
			score += 2
		case i < 3*len(sentences)/5:
			score += 1
		}

		candidates = append(candidates, scored{sentence: sent, score: score, index: i})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	out := make([]string, 0, n)
	for _, c := range candidates {
		if len(c.sentence) < 20 || len(c.sentence) > 300 {
			continue
		}
		out = append(out, c.sentence)
		if len(out) >= n {
			break
		}
	}
	return out
}

var tagPatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"javascript", regexp.MustCompile(`(?i)\b(javascript|js|node\.?js|react|vue)\b`)},
	{"python", regexp.MustCompile(`(?i)\b(python|django|flask)\b`)},
	{"go", regexp.MustCompile(`(?i)\b(golang|goroutine)\b`)},
	{"web development", regexp.MustCompile(`(?i)\b(web|website|html|css|frontend|backend)\b`)},
	{"api", regexp.MustCompile(`(?i)\b(api|rest|graphql|grpc)\b`)},
	{"database", regexp.MustCompile(`(?i)\b(database|sql|postgres|mongodb)\b`)},
	{"machine learning", regexp.MustCompile(`(?i)\b(machine learning|neural|llm|embedding)\b`)},
	{"tutorial", regexp.MustCompile(`(?i)\b(tutorial|guide|learn|how to)\b`)},
	{"technology", regexp.MustCompile(`(?i)\b(technology|tech|software)\b`)},
}

// KeywordTags derives coarse tags from keyword patterns when AI tagging is
// unavailable.
func KeywordTags(title, content string) []string {
	text := title + " " + content
	var tags []string
	for _, p := range tagPatterns {
		if p.re.MatchString(text) {
			tags = append(tags, p.tag)
		}
		if len(tags) >= 6 {
			break
		}
	}
	if len(tags) == 0 {
		return []string{"article"}
	}
	return tags
}
