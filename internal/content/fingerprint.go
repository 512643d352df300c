package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Fingerprint computes the dedup hash over the normalized identity of an
// item: type plus lowercased, trimmed title, body and source URL. Absent
// fields participate as empty strings, so changing any one field yields a
// different fingerprint. The serialized form is deterministic (fixed field
// order via struct marshalling).
func Fingerprint(typ Type, title, body, sourceURL string) string {
	norm := struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		SourceURL string `json:"sourceUrl"`
	}{
		Type:      string(typ),
		Title:     normalize(title),
		Body:      normalize(body),
		SourceURL: normalize(sourceURL),
	}

	b, _ := json.Marshal(norm)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
