package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	plain := `{"summary": "x"}`
	assert.Equal(t, plain, stripFences(plain))
	assert.Equal(t, plain, stripFences("```json\n"+plain+"\n```"))
	assert.Equal(t, plain, stripFences("```\n"+plain+"\n```"))
	assert.Equal(t, plain, stripFences("  "+plain+"  "))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab", clip("abcd", 2))
}
