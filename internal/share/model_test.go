package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidityActive(t *testing.T) {
	sh := &Share{IsActive: true}
	assert.Equal(t, ValidityOK, sh.Validity(time.Now()))
}

func TestValidityDeactivatedBeatsExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	sh := &Share{IsActive: false, ExpiresAt: &past}
	// Revocation is reported even when the share is also past expiry.
	assert.Equal(t, ValidityDeactivated, sh.Validity(time.Now()))
}

func TestValidityExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	sh := &Share{IsActive: true, ExpiresAt: &past}
	assert.Equal(t, ValidityExpired, sh.Validity(time.Now()))
}

func TestValidityFutureExpiry(t *testing.T) {
	future := time.Now().Add(time.Hour)
	sh := &Share{IsActive: true, ExpiresAt: &future}
	assert.Equal(t, ValidityOK, sh.Validity(time.Now()))
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
