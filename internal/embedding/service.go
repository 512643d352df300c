// Package embedding generates and queries semantic vectors for content.
package embedding

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"secondbrain/internal/apperr"
	"secondbrain/internal/content"
)

// Embedder is satisfied by ai.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedModel() string
}

type Service struct {
	DB       *gorm.DB
	Embedder Embedder
	Contents *content.Service
	Log      *slog.Logger
}

func NewService(db *gorm.DB, emb Embedder, contents *content.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{DB: db, Embedder: emb, Contents: contents, Log: log}
}

// maxSourceLen caps the text sent to the embedding model.
const maxSourceLen = 8000

// Generate embeds the given content item and upserts its vector. Re-running
// it refreshes a stale embedding.
func (s *Service) Generate(ctx context.Context, userID, contentID uint64) (*ContentEmbedding, error) {
	if s.Embedder == nil {
		return nil, apperr.Upstream("embedding service is not configured", nil)
	}

	c, err := s.Contents.Get(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}

	source := sourceText(c)
	if source == "" {
		return nil, apperr.Validation("content has no text to embed")
	}

	vec, err := s.Embedder.Embed(ctx, source)
	if err != nil {
		return nil, err
	}

	emb := &ContentEmbedding{
		ContentID:  c.ID,
		UserID:     userID,
		Embedding:  pgvector.NewVector(vec),
		Model:      s.Embedder.EmbedModel(),
		SourceText: source,
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "model", "source_text", "updated_at"}),
	}).Create(emb).Error
	if err != nil {
		return nil, err
	}

	s.Log.Info("embedding generated", "content_id", c.ID, "model", emb.Model)
	return emb, nil
}

type Match struct {
	Content    content.Content `json:"content"`
	Similarity float64         `json:"similarity"`
}

// SemanticSearch embeds the query and ranks the user's content by cosine
// similarity. Items without an embedding never match.
func (s *Service) SemanticSearch(ctx context.Context, userID uint64, query string, limit int, threshold float64) ([]Match, error) {
	if s.Embedder == nil {
		return nil, apperr.Upstream("embedding service is not configured", nil)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	qvec, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var rows []ContentEmbedding
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	type scored struct {
		contentID uint64
		sim       float64
	}
	var ranked []scored
	for _, row := range rows {
		sim := Cosine(qvec, row.Embedding.Slice())
		if sim >= threshold {
			ranked = append(ranked, scored{row.ContentID, sim})
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]uint64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.contentID
	}
	items, err := s.Contents.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]content.Content, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	matches := make([]Match, 0, len(ranked))
	for _, r := range ranked {
		// Skip embeddings whose content was deleted after embedding.
		if it, ok := byID[r.contentID]; ok {
			matches = append(matches, Match{Content: it, Similarity: r.sim})
		}
	}
	return matches, nil
}

func sourceText(c *content.Content) string {
	parts := []string{c.Title}
	if c.Summary != "" {
		parts = append(parts, c.Summary)
	}
	if c.Body != "" {
		parts = append(parts, c.Body)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, strings.Join(c.Tags, " "))
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if len(text) > maxSourceLen {
		text = text[:maxSourceLen]
	}
	return text
}
