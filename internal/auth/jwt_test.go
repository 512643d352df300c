package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(42)
	require.NoError(t, err)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestJWTExpired(t *testing.T) {
	j := NewJWT("test-secret", -time.Minute)

	token, err := j.Sign(42)
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a", time.Hour).Sign(42)
	require.NoError(t, err)

	_, err = NewJWT("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	_, err := NewJWT("test-secret", time.Hour).Verify("not.a.token")
	assert.Error(t, err)
}
