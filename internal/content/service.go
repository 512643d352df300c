package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"secondbrain/internal/apperr"
	"secondbrain/internal/owned"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100 // hard cap, larger requests are clamped silently
)

// ftsExpr is the weighted document vector: title > summary > body > tags.
// It must stay byte-identical to the expression index in internal/db.
const ftsExpr = `(setweight(to_tsvector('english', coalesce(title, '')), 'A') || setweight(to_tsvector('english', coalesce(summary, '')), 'B') || setweight(to_tsvector('english', coalesce(body, '')), 'C') || setweight(to_tsvector('english', array_to_string(tags, ' ')), 'D'))`

type Service struct {
	DB         *gorm.DB
	Scraper    Scraper
	Summarizer Summarizer
	Log        *slog.Logger
}

type CreateInput struct {
	Type      Type
	Title     string
	Body      string
	SourceURL string
	Tags      []string
	Summary   string
	KeyPoints []string
	Metadata  datatypes.JSON
}

// Create persists a new item after the two-step duplicate check: fingerprint
// equality first, then exact source URL for links. No partial write happens
// on a duplicate.
func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*Content, error) {
	hash := Fingerprint(in.Type, in.Title, in.Body, in.SourceURL)
	return s.createWithHash(ctx, userID, in, hash)
}

// createWithHash runs the duplicate checks and persists. File uploads key
// their fingerprint on title plus storage key instead of body text, so they
// pass a precomputed hash.
func (s *Service) createWithHash(ctx context.Context, userID uint64, in CreateInput, hash string) (*Content, error) {
	if !in.Type.Valid() {
		return nil, apperr.Validation("invalid content type")
	}

	var n int64
	err := s.DB.WithContext(ctx).Model(&Content{}).
		Where("user_id = ? AND content_hash = ? AND is_deleted = false", userID, hash).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.Conflict("this exact content already exists")
	}

	if in.Type == TypeLink && in.SourceURL != "" {
		err := s.DB.WithContext(ctx).Model(&Content{}).
			Where("user_id = ? AND type = ? AND source_url = ? AND is_deleted = false",
				userID, TypeLink, in.SourceURL).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, apperr.Conflict("a content item with this URL already exists")
		}
	}

	c := Content{
		UserID:      userID,
		Type:        in.Type,
		Title:       in.Title,
		Body:        in.Body,
		SourceURL:   in.SourceURL,
		Tags:        normalizeTags(in.Tags),
		Summary:     in.Summary,
		KeyPoints:   pq.StringArray(in.KeyPoints),
		Metadata:    in.Metadata,
		ContentHash: hash,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		// The partial unique indexes back the checks above under concurrency.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("this exact content already exists")
		}
		return nil, err
	}

	s.Log.Info("content created", "user_id", userID, "content_id", c.ID, "type", c.Type)
	return &c, nil
}

type ListOptions struct {
	Page   int
	Limit  int
	Type   Type
	Tag    string
	SortBy string
	Order  string
}

type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// sortColumns whitelists sortable fields; anything else falls back to
// created_at so client input never reaches the ORDER BY clause raw.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"type":      "type",
}

func (o ListOptions) normalized() (page, limit int, orderBy string) {
	page = o.Page
	if page < 1 {
		page = 1
	}
	limit = o.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	col, ok := sortColumns[o.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "desc"
	if o.Order == "asc" {
		dir = "asc"
	}
	return page, limit, col + " " + dir
}

func (s *Service) List(ctx context.Context, userID uint64, opts ListOptions) ([]Content, Pagination, error) {
	page, limit, orderBy := opts.normalized()

	q := s.DB.WithContext(ctx).Model(&Content{}).
		Where("user_id = ? AND is_deleted = false", userID)
	if opts.Type != "" {
		if !opts.Type.Valid() {
			return nil, Pagination{}, apperr.Validation("invalid content type")
		}
		q = q.Where("type = ?", opts.Type)
	}
	if opts.Tag != "" {
		q = q.Where("? = any(tags)", opts.Tag)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var rows []Content
	err := q.Order(orderBy).Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	return rows, paginate(total, page, limit), nil
}

func (s *Service) Get(ctx context.Context, userID, id uint64) (*Content, error) {
	var c Content
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = false", id, userID).
		First(&c).Error
	if err != nil {
		return nil, apperr.NotFound("content not found")
	}
	return &c, nil
}

type UpdateInput struct {
	Title    *string
	Body     *string
	Tags     []string
	Metadata datatypes.JSON
}

// Update applies a partial update. Type and ownership are immutable.
func (s *Service) Update(ctx context.Context, userID, id uint64, in UpdateInput) (*Content, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Body != nil {
		c.Body = *in.Body
	}
	if in.Tags != nil {
		c.Tags = normalizeTags(in.Tags)
	}
	if in.Metadata != nil {
		c.Metadata = in.Metadata
	}
	c.UpdatedAt = time.Now()

	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) SoftDelete(ctx context.Context, userID, id uint64) error {
	now := time.Now()
	res := s.DB.WithContext(ctx).Model(&Content{}).
		Where("id = ? AND user_id = ? AND is_deleted = false", id, userID).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("content not found")
	}
	return nil
}

// Search runs weighted full-text search over the caller's non-deleted items.
// An empty query short-circuits to an empty page without touching the store.
func (s *Service) Search(ctx context.Context, userID uint64, query string, page, limit int) ([]Content, Pagination, error) {
	page, limit, _ = ListOptions{Page: page, Limit: limit}.normalized()

	if query == "" {
		return []Content{}, Pagination{CurrentPage: page, Limit: limit}, nil
	}

	var total int64
	err := s.DB.WithContext(ctx).Raw(`
		select count(*)
		from contents
		where user_id = ? and is_deleted = false
		  and `+ftsExpr+` @@ plainto_tsquery('english', ?)
	`, userID, query).Scan(&total).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	var rows []Content
	err = s.DB.WithContext(ctx).Raw(`
		select *
		from contents
		where user_id = ? and is_deleted = false
		  and `+ftsExpr+` @@ plainto_tsquery('english', ?)
		order by ts_rank(`+ftsExpr+`, plainto_tsquery('english', ?)) desc
		limit ? offset ?
	`, userID, query, query, limit, (page-1)*limit).Scan(&rows).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	return rows, paginate(total, page, limit), nil
}

// SearchRanked is the retrieval primitive for question answering: top-n
// full-text hits with an optional tag filter, no pagination envelope.
func (s *Service) SearchRanked(ctx context.Context, userID uint64, query string, tags []string, limit int) ([]Content, error) {
	if query == "" || limit < 1 {
		return nil, nil
	}

	q := `
		select *
		from contents
		where user_id = ? and is_deleted = false
		  and ` + ftsExpr + ` @@ plainto_tsquery('english', ?)`
	args := []any{userID, query}
	if len(tags) > 0 {
		q += ` and tags && ?`
		args = append(args, pq.StringArray(normalizeTags(tags)))
	}
	q += ` order by ts_rank(` + ftsExpr + `, plainto_tsquery('english', ?)) desc limit ?`
	args = append(args, query, limit)

	var rows []Content
	if err := s.DB.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent returns the newest non-deleted items, optionally tag-filtered. Used
// as the candidate pool for the Q&A keyword fallback.
func (s *Service) Recent(ctx context.Context, userID uint64, tags []string, n int) ([]Content, error) {
	q := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = false", userID)
	if len(tags) > 0 {
		q = q.Where("tags && ?", pq.StringArray(normalizeTags(tags)))
	}

	var rows []Content
	if err := q.Order("created_at desc").Limit(n).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByIDs fetches non-deleted items owned by userID, preserving the input
// order. IDs that are missing or deleted are skipped.
func (s *Service) GetByIDs(ctx context.Context, userID uint64, ids []uint64) ([]Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []Content
	err := s.DB.WithContext(ctx).
		Where("id in ? AND user_id = ? AND is_deleted = false", ids, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]Content, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	out := make([]Content, 0, len(rows))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// AssignToCollection adds an item to a collection the caller owns. Adding an
// item twice is a no-op.
func (s *Service) AssignToCollection(ctx context.Context, userID, contentID, collectionID uint64) (*Content, error) {
	if err := owned.Check(ctx, s.DB, "collections", collectionID, userID); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if c.InCollection(collectionID) {
		return c, nil
	}

	c.CollectionIDs = append(c.CollectionIDs, int64(collectionID))
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListByCollection(ctx context.Context, userID, collectionID uint64) ([]Content, error) {
	if err := owned.Check(ctx, s.DB, "collections", collectionID, userID); err != nil {
		return nil, err
	}

	var rows []Content
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = false AND ? = any(collection_ids)", userID, collectionID).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func paginate(total int64, page, limit int) Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		Limit:       limit,
	}
}

func normalizeTags(tags []string) pq.StringArray {
	seen := map[string]struct{}{}
	out := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		t = normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
