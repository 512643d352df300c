package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStorageKey(t *testing.T) {
	doc := &Content{
		Type: TypeDocument,
		Metadata: marshalMetadata(DocumentMetadata{
			FileName:    "paper.pdf",
			StorageKey:  "pdfs/abc.pdf",
			ProcessedAt: time.Now(),
		}),
	}
	assert.Equal(t, "pdfs/abc.pdf", doc.StorageKey())

	text := &Content{Type: TypeText}
	assert.Empty(t, text.StorageKey())

	link := &Content{Type: TypeLink, Metadata: marshalMetadata(LinkMetadata{Author: "x"})}
	assert.Empty(t, link.StorageKey())
}
