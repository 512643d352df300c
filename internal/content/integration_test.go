//go:build integration

package content_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"secondbrain/internal/apperr"
	"secondbrain/internal/auth"
	"secondbrain/internal/content"
	"secondbrain/internal/db"
)

// These tests need a real postgres because the duplicate checks lean on
// partial unique indexes and raw SQL. Point TEST_DATABASE_URL at a scratch
// database and run with -tags integration.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	gdb, err := db.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	return gdb
}

func newUser(t *testing.T, gdb *gorm.DB) *auth.User {
	t.Helper()
	u := &auth.User{Name: "Tester", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func newService(gdb *gorm.DB) *content.Service {
	return &content.Service{DB: gdb, Log: slog.New(slog.DiscardHandler)}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "want *apperr.Error, got %v", err)
	return e.Kind
}

func TestCreateRejectsDuplicateFingerprint(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	ctx := context.Background()

	in := content.CreateInput{
		Type:  content.TypeText,
		Title: "Meeting notes " + uuid.NewString(),
		Body:  "decisions and owners",
	}
	first, err := svc.Create(ctx, u.ID, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, u.ID, in)
	assert.Equal(t, apperr.KindConflict, kindOf(t, err))

	// Soft-deleting frees the fingerprint slot.
	require.NoError(t, svc.SoftDelete(ctx, u.ID, first.ID))
	_, err = svc.Create(ctx, u.ID, in)
	assert.NoError(t, err)
}

func TestCreateRejectsDuplicateLinkURL(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	ctx := context.Background()

	url := "https://example.com/posts/" + uuid.NewString()
	_, err := svc.Create(ctx, u.ID, content.CreateInput{
		Type: content.TypeLink, Title: "First read", Body: "article text", SourceURL: url,
	})
	require.NoError(t, err)

	// Different text, same URL: the URL check fires even when the
	// fingerprints differ.
	_, err = svc.Create(ctx, u.ID, content.CreateInput{
		Type: content.TypeLink, Title: "Second read", Body: "re-scraped text", SourceURL: url,
	})
	assert.Equal(t, apperr.KindConflict, kindOf(t, err))
}

func TestContentIsolatedBetweenUsers(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	a := newUser(t, gdb)
	b := newUser(t, gdb)
	ctx := context.Background()

	in := content.CreateInput{
		Type:  content.TypeText,
		Title: "Reading list",
		Body:  "same body " + uuid.NewString(),
	}
	c, err := svc.Create(ctx, a.ID, in)
	require.NoError(t, err)

	// Dedup is per user: the identical item under another account saves fine.
	_, err = svc.Create(ctx, b.ID, in)
	require.NoError(t, err)

	// And another user's item is invisible, not forbidden.
	_, err = svc.Get(ctx, b.ID, c.ID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}
