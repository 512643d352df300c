package share

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/apperr"
	"secondbrain/internal/auth"
)

func protectedShare(t *testing.T, password string) *Share {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &Share{
		IsActive:     true,
		HasPassword:  true,
		PasswordHash: &hash,
	}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	return ae.Kind
}

func TestGateOpenShare(t *testing.T) {
	sh := &Share{IsActive: true}
	assert.NoError(t, gate(sh, Access{}, time.Now()))
}

func TestGateDeactivated(t *testing.T) {
	sh := &Share{IsActive: false}
	err := gate(sh, Access{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestGateExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	sh := &Share{IsActive: true, ExpiresAt: &past}
	err := gate(sh, Access{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestGateExpiryCheckedBeforeAllowList(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	sh := &Share{
		IsActive:      true,
		ExpiresAt:     &past,
		AllowedEmails: pq.StringArray{"a@x.com"},
	}
	err := gate(sh, Access{Email: "b@y.com"}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestGateAllowList(t *testing.T) {
	sh := &Share{IsActive: true, AllowedEmails: pq.StringArray{"a@x.com"}}

	err := gate(sh, Access{}, time.Now())
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

	err = gate(sh, Access{Email: "b@y.com"}, time.Now())
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

	assert.NoError(t, gate(sh, Access{Email: "A@X.com "}, time.Now()))
}

func TestGatePasswordMissingVsWrong(t *testing.T) {
	sh := protectedShare(t, "secret123")

	missing := gate(sh, Access{}, time.Now())
	require.Error(t, missing)
	assert.Contains(t, missing.Error(), "password required")

	wrong := gate(sh, Access{Password: "nope"}, time.Now())
	require.Error(t, wrong)
	assert.Contains(t, wrong.Error(), "invalid")

	assert.NoError(t, gate(sh, Access{Password: "secret123"}, time.Now()))
}

func TestGateAllowListBeforePassword(t *testing.T) {
	sh := protectedShare(t, "secret123")
	sh.AllowedEmails = pq.StringArray{"a@x.com"}

	// Wrong email is reported before the missing password.
	err := gate(sh, Access{Password: ""}, time.Now())
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

	err = gate(sh, Access{Email: "a@x.com"}, time.Now())
	assert.Equal(t, apperr.KindAuth, kindOf(t, err))
}

func TestPublicViewStripsSecrets(t *testing.T) {
	sh := protectedShare(t, "secret123")
	sh.AllowedEmails = pq.StringArray{"a@x.com"}

	out := publicView(sh)
	assert.Nil(t, out.PasswordHash)
	assert.Nil(t, out.AllowedEmails)
	// The original keeps its gate data.
	assert.NotNil(t, sh.PasswordHash)
}
