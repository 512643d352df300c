package collection

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"secondbrain/internal/apperr"
)

type Service struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{DB: db, Log: log}
}

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*Collection, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("collection name is required")
	}
	if len(name) > 100 {
		return nil, apperr.Validation("collection name must be at most 100 characters")
	}

	col := &Collection{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.DB.WithContext(ctx).Create(col).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a collection with this name already exists")
		}
		return nil, err
	}

	s.Log.Info("collection created", "collection_id", col.ID, "user_id", userID)
	return col, nil
}

// List returns the user's live collections, newest first, each annotated with
// how many live items it holds.
func (s *Service) List(ctx context.Context, userID uint64) ([]Collection, error) {
	var cols []Collection
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").
		Find(&cols).Error
	if err != nil {
		return nil, err
	}

	for i := range cols {
		var n int64
		err := s.DB.WithContext(ctx).
			Table("contents").
			Where("user_id = ? AND is_deleted = ? AND collection_ids @> ARRAY[?]::bigint[]",
				userID, false, int64(cols[i].ID)).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		cols[i].ContentCount = n
	}
	return cols, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint64) (*Collection, error) {
	var col Collection
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("collection not found")
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Service) Update(ctx context.Context, userID, id uint64, in UpdateInput) (*Collection, error) {
	col, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("collection name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if len(updates) == 0 {
		return col, nil
	}

	err = s.DB.WithContext(ctx).Model(col).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("a collection with this name already exists")
	}
	if err != nil {
		return nil, err
	}
	return col, nil
}

// SoftDelete hides the collection and detaches it from any content that
// referenced it. The content itself is untouched.
func (s *Service) SoftDelete(ctx context.Context, userID, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&Collection{}).
			Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
			Updates(map[string]any{"is_deleted": true, "deleted_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("collection not found")
		}

		return tx.Exec(
			"UPDATE contents SET collection_ids = array_remove(collection_ids, ?) WHERE user_id = ?",
			int64(id), userID,
		).Error
	})
}
