package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(TypeText, "Notes", "hello", "")
	b := Fingerprint(TypeText, "Notes", "hello", "")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintNormalizesCaseAndSpace(t *testing.T) {
	a := Fingerprint(TypeText, "Notes", "hello", "")
	b := Fingerprint(TypeText, "  NOTES  ", " HELLO ", "")
	assert.Equal(t, a, b)
}

func TestFingerprintChangesPerField(t *testing.T) {
	base := Fingerprint(TypeText, "Notes", "hello", "")

	assert.NotEqual(t, base, Fingerprint(TypeLink, "Notes", "hello", ""))
	assert.NotEqual(t, base, Fingerprint(TypeText, "Other", "hello", ""))
	assert.NotEqual(t, base, Fingerprint(TypeText, "Notes", "world", ""))
	assert.NotEqual(t, base, Fingerprint(TypeText, "Notes", "hello", "https://x.com"))
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	// Field shuffling must not collide: (ab, c) != (a, bc).
	a := Fingerprint(TypeText, "ab", "c", "")
	b := Fingerprint(TypeText, "a", "bc", "")
	assert.NotEqual(t, a, b)
}
