package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
	"secondbrain/internal/content"
	"secondbrain/internal/embedding"
	"secondbrain/internal/jobs"
	"secondbrain/internal/share"
)

func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError turns postgres unique violations into
	// gorm.ErrDuplicatedKey, which services map to conflicts.
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// pgvector must exist before the embeddings table migrates.
	if err := gdb.Exec(`create extension if not exists vector;`).Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}

	if err := gdb.AutoMigrate(
		&auth.User{},
		&content.Content{},
		&collection.Collection{},
		&embedding.ContentEmbedding{},
		&share.Share{},
		&share.ShareViewer{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Dedup: one live fingerprint per user, and one live URL per user for
	// link-type content. Partial so soft-deleted rows free their slot.
	if err := gdb.Exec(`
create unique index if not exists uq_contents_user_hash
on contents(user_id, content_hash)
where is_deleted = false;
`).Error; err != nil {
		return err
	}
	if err := gdb.Exec(`
create unique index if not exists uq_contents_user_url
on contents(user_id, source_url)
where type = 'link' and is_deleted = false;
`).Error; err != nil {
		return err
	}

	// One live collection name per user.
	if err := gdb.Exec(`
create unique index if not exists uq_collections_user_name
on collections(user_id, name)
where is_deleted = false;
`).Error; err != nil {
		return err
	}

	// Weighted full-text index. The expression must stay byte-identical to
	// the query constant in internal/content, or the planner won't use it.
	if err := gdb.Exec(`
create index if not exists idx_contents_fts
on contents using gin ((setweight(to_tsvector('english', coalesce(title, '')), 'A') || setweight(to_tsvector('english', coalesce(summary, '')), 'B') || setweight(to_tsvector('english', coalesce(body, '')), 'C') || setweight(to_tsvector('english', array_to_string(tags, ' ')), 'D')));
`).Error; err != nil {
		return err
	}

	// First-IP-wins viewer records rely on this for on-conflict-do-nothing.
	if err := gdb.Exec(`
create unique index if not exists uq_share_viewers_share_ip
on share_viewers(share_id, ip);
`).Error; err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_contents_tags on contents using gin (tags);`,
		`create index if not exists idx_contents_collections on contents using gin (collection_ids);`,
		`create index if not exists idx_contents_user_created on contents(user_id, created_at desc);`,
		`create index if not exists idx_shares_expires on shares(expires_at) where expires_at is not null;`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
