package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyPrefixes(t *testing.T) {
	img := ObjectKey("image/png", "Photo.PNG")
	assert.True(t, strings.HasPrefix(img, "images/"))
	assert.True(t, strings.HasSuffix(img, ".png"))

	pdf := ObjectKey("application/pdf", "paper.pdf")
	assert.True(t, strings.HasPrefix(pdf, "pdfs/"))
	assert.True(t, strings.HasSuffix(pdf, ".pdf"))
}

func TestObjectKeyUnique(t *testing.T) {
	a := ObjectKey("image/jpeg", "a.jpg")
	b := ObjectKey("image/jpeg", "a.jpg")
	assert.NotEqual(t, a, b)
}
