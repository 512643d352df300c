//go:build integration

package share_test

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

	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
	"secondbrain/internal/content"
	"secondbrain/internal/db"
	"secondbrain/internal/jobs"
	"secondbrain/internal/mail"
	"secondbrain/internal/share"
)

// Share creation and view accounting lean on unique indexes and raw SQL, so
// these run against a real postgres. Point TEST_DATABASE_URL at a scratch
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

func newService(gdb *gorm.DB) *share.Service {
	discard := slog.New(slog.DiscardHandler)
	contents := &content.Service{DB: gdb, Log: discard}
	collections := collection.NewService(gdb, discard)
	repo := &jobs.Repo{DB: gdb}
	return share.NewService(gdb, contents, collections, repo, "http://localhost:3000", discard)
}

func newContent(t *testing.T, svc *share.Service, userID uint64) *content.Content {
	t.Helper()
	c, err := svc.Contents.Create(context.Background(), userID, content.CreateInput{
		Type:  content.TypeText,
		Title: "Shared note " + uuid.NewString(),
		Body:  "body text",
	})
	require.NoError(t, err)
	return c
}

func TestCreateShareIsIdempotent(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	c := newContent(t, svc, u.ID)
	ctx := context.Background()

	first, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)
	second, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
}

func TestCreateShareRetiresExpiredPredecessor(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	c := newContent(t, svc, u.ID)
	ctx := context.Background()

	first, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)
	require.NoError(t, gdb.Exec(
		`update shares set expires_at = now() - interval '1 day' where id = ?`, first.ID,
	).Error)

	replacement, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, replacement.Token)

	// The replacement is now the stable answer, not yet another token.
	again, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, again.ID)
	assert.Equal(t, replacement.Token, again.Token)

	var old share.Share
	require.NoError(t, gdb.First(&old, first.ID).Error)
	assert.False(t, old.IsActive)
}

func TestResolveRecordsDistinctViewers(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	c := newContent(t, svc, u.ID)
	ctx := context.Background()

	sh, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{})
	require.NoError(t, err)

	alice := share.Visitor{IP: "203.0.113.7", UserAgent: "Mozilla/5.0 (X11; Linux x86_64)"}
	bob := share.Visitor{IP: "203.0.113.9", UserAgent: "curl/8.5.0"}
	_, err = svc.ResolveContent(ctx, sh.Token, alice, share.Access{})
	require.NoError(t, err)
	_, err = svc.ResolveContent(ctx, sh.Token, alice, share.Access{})
	require.NoError(t, err)
	_, err = svc.ResolveContent(ctx, sh.Token, bob, share.Access{})
	require.NoError(t, err)

	stats, err := svc.Analytics(ctx, u.ID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ViewCount)
	assert.Equal(t, int64(2), stats.UniqueViewers)
	require.Len(t, stats.Viewers, 2)
	assert.Equal(t, alice.IP, stats.Viewers[0].IP)
	assert.Equal(t, alice.UserAgent, stats.Viewers[0].UserAgent)
}

func TestPurgeRemovesShareAndViewers(t *testing.T) {
	gdb := testDB(t)
	svc := newService(gdb)
	u := newUser(t, gdb)
	c := newContent(t, svc, u.ID)
	ctx := context.Background()

	days := 1
	sh, err := svc.CreateForContent(ctx, u.ID, c.ID, share.CreateInput{ExpiresInDays: &days})
	require.NoError(t, err)
	_, err = svc.ResolveContent(ctx, sh.Token, share.Visitor{IP: "203.0.113.7", UserAgent: "curl/8.5.0"}, share.Access{})
	require.NoError(t, err)

	// Move the share's expiry and the purge job's schedule into the past.
	require.NoError(t, gdb.Exec(
		`update shares set expires_at = now() - interval '1 hour' where id = ?`, sh.ID,
	).Error)
	require.NoError(t, gdb.Exec(
		`update jobs set run_at = now() - interval '1 hour'
		 where type = ? and (payload->>'share_id')::bigint = ?`,
		jobs.TypeSharePurge, sh.ID,
	).Error)

	w := &jobs.Worker{ID: "test-worker", Repo: &jobs.Repo{DB: gdb}, DB: gdb, Mailer: mail.Discard{}}
	for w.RunOnce(ctx) {
	}

	err = gdb.First(&share.Share{}, sh.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var viewers int64
	require.NoError(t, gdb.Model(&share.ShareViewer{}).Where("share_id = ?", sh.ID).Count(&viewers).Error)
	assert.Zero(t, viewers)
}
