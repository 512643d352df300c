// Package share manages public access grants: tokenized links to one content
// item or collection, optionally gated by password, email allow-list, and
// expiry.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"secondbrain/internal/apperr"
	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
	"secondbrain/internal/content"
	"secondbrain/internal/jobs"
)

type Service struct {
	DB          *gorm.DB
	Contents    *content.Service
	Collections *collection.Service
	Jobs        *jobs.Repo
	FrontendURL string
	Log         *slog.Logger
}

func NewService(db *gorm.DB, contents *content.Service, collections *collection.Service, jobsRepo *jobs.Repo, frontendURL string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		DB:          db,
		Contents:    contents,
		Collections: collections,
		Jobs:        jobsRepo,
		FrontendURL: frontendURL,
		Log:         log,
	}
}

type CreateInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	IsPublic      *bool    `json:"isPublic"`
	Password      string   `json:"password"`
	AllowedEmails []string `json:"allowedEmails"`
	ExpiresInDays *int     `json:"expiresInDays"`
}

// CreateForContent shares a single content item. If an active share for the
// same target already exists it is returned unchanged.
func (s *Service) CreateForContent(ctx context.Context, userID, contentID uint64, in CreateInput) (*Share, error) {
	c, err := s.Contents.Get(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, userID, TargetContent, contentID, c.Title, c.Summary, in)
}

// CreateForCollection shares a collection together with its live members.
func (s *Service) CreateForCollection(ctx context.Context, userID, collectionID uint64, in CreateInput) (*Share, error) {
	col, err := s.Collections.Get(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, userID, TargetCollection, collectionID, col.Name, col.Description, in)
}

func (s *Service) create(ctx context.Context, userID uint64, targetType string, targetID uint64, defaultTitle, defaultDesc string, in CreateInput) (*Share, error) {
	now := time.Now()

	var existing Share
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ? AND is_active = ?",
			userID, targetType, targetID, true).
		First(&existing).Error
	switch {
	case err == nil && existing.Validity(now) == ValidityOK:
		return &existing, nil
	case err == nil:
		// Expired but not purged yet. Retire it so it stops matching this
		// lookup, otherwise every create would mint a fresh replacement.
		if err := s.DB.WithContext(ctx).Model(&existing).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	sh := &Share{
		UserID:        userID,
		Token:         token,
		TargetType:    targetType,
		TargetID:      targetID,
		Title:         defaultTitle,
		Description:   defaultDesc,
		IsPublic:      true,
		IsActive:      true,
		AllowedEmails: normalizeEmails(in.AllowedEmails),
	}
	if strings.TrimSpace(in.Title) != "" {
		sh.Title = strings.TrimSpace(in.Title)
	}
	if strings.TrimSpace(in.Description) != "" {
		sh.Description = strings.TrimSpace(in.Description)
	}
	if in.IsPublic != nil {
		sh.IsPublic = *in.IsPublic
	}
	// An allow-list always implies restricted access.
	if len(sh.AllowedEmails) > 0 {
		sh.IsPublic = false
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		sh.PasswordHash = &hash
		sh.HasPassword = true
	}
	if in.ExpiresInDays != nil && *in.ExpiresInDays > 0 {
		exp := now.AddDate(0, 0, *in.ExpiresInDays)
		sh.ExpiresAt = &exp
	}

	if err := s.DB.WithContext(ctx).Create(sh).Error; err != nil {
		return nil, err
	}

	if sh.ExpiresAt != nil {
		s.enqueuePurge(ctx, sh)
	}

	s.Log.Info("share created", "share_id", sh.ID, "target_type", targetType, "target_id", targetID)
	return sh, nil
}

func (s *Service) enqueuePurge(ctx context.Context, sh *Share) {
	payload, _ := json.Marshal(map[string]any{"share_id": sh.ID})
	err := s.Jobs.Enqueue(ctx, jobs.Job{
		UserID:  sh.UserID,
		Type:    jobs.TypeSharePurge,
		Payload: payload,
		RunAt:   *sh.ExpiresAt,
	})
	if err != nil {
		s.Log.Warn("failed to enqueue share purge", "share_id", sh.ID, "error", err)
	}
}

// URL is the public link for a share.
func (s *Service) URL(sh *Share) string {
	return strings.TrimRight(s.FrontendURL, "/") + "/shared/" + sh.Token
}

// Access carries the optional secondary credentials from a public resolve
// request.
type Access struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

// gate validates the share against the supplied credentials in a fixed
// order, so the caller always learns the earliest failing condition.
func gate(sh *Share, a Access, now time.Time) error {
	switch sh.Validity(now) {
	case ValidityDeactivated:
		return apperr.Forbidden("this share link has been deactivated")
	case ValidityExpired:
		return apperr.Forbidden("this share link has expired")
	}
	if len(sh.AllowedEmails) > 0 {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		allowed := false
		for _, e := range sh.AllowedEmails {
			if e == email {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.Forbidden("this share link is private")
		}
	}
	if sh.HasPassword {
		if a.Password == "" {
			return apperr.Unauthorized("password required to access this share")
		}
		if sh.PasswordHash == nil || !auth.ComparePassword(*sh.PasswordHash, a.Password) {
			return apperr.Unauthorized("invalid share password")
		}
	}
	return nil
}

type ResolvedContent struct {
	Share   *Share           `json:"share"`
	Content *content.Content `json:"content"`
}

type ResolvedCollection struct {
	Share      *Share                 `json:"share"`
	Collection *collection.Collection `json:"collection"`
	Items      []content.Content      `json:"items"`
}

// Visitor identifies the unauthenticated client behind a resolve request,
// for view accounting only.
type Visitor struct {
	IP        string
	UserAgent string
}

// ResolveContent is the unauthenticated entry point for content shares.
func (s *Service) ResolveContent(ctx context.Context, token string, v Visitor, a Access) (*ResolvedContent, error) {
	sh, err := s.byToken(ctx, token, TargetContent)
	if err != nil {
		return nil, err
	}
	if err := gate(sh, a, time.Now()); err != nil {
		return nil, err
	}

	c, err := s.Contents.Get(ctx, sh.UserID, sh.TargetID)
	if err != nil {
		return nil, apperr.NotFound("shared content no longer exists")
	}

	s.recordView(ctx, sh, v, a.Email)
	return &ResolvedContent{Share: publicView(sh), Content: c}, nil
}

// ResolveCollection resolves a collection share and returns its live members.
func (s *Service) ResolveCollection(ctx context.Context, token string, v Visitor, a Access) (*ResolvedCollection, error) {
	sh, err := s.byToken(ctx, token, TargetCollection)
	if err != nil {
		return nil, err
	}
	if err := gate(sh, a, time.Now()); err != nil {
		return nil, err
	}

	col, err := s.Collections.Get(ctx, sh.UserID, sh.TargetID)
	if err != nil {
		return nil, apperr.NotFound("shared collection no longer exists")
	}
	items, err := s.Contents.ListByCollection(ctx, sh.UserID, sh.TargetID)
	if err != nil {
		return nil, err
	}

	s.recordView(ctx, sh, v, a.Email)
	return &ResolvedCollection{Share: publicView(sh), Collection: col, Items: items}, nil
}

func (s *Service) byToken(ctx context.Context, token, targetType string) (*Share, error) {
	var sh Share
	err := s.DB.WithContext(ctx).
		Where("token = ? AND target_type = ?", token, targetType).
		First(&sh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("share link not found")
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// recordView bumps the counter and records the viewer's IP and client agent
// on first sight. View accounting is best effort and never fails the resolve.
func (s *Service) recordView(ctx context.Context, sh *Share, v Visitor, email string) {
	now := time.Now()
	err := s.DB.WithContext(ctx).Model(sh).Updates(map[string]any{
		"view_count":     gorm.Expr("view_count + 1"),
		"last_viewed_at": now,
	}).Error
	if err != nil {
		s.Log.Warn("failed to record share view", "share_id", sh.ID, "error", err)
		return
	}
	sh.ViewCount++
	sh.LastViewedAt = &now

	if v.IP == "" {
		return
	}
	ua := v.UserAgent
	if len(ua) > 500 {
		ua = ua[:500]
	}
	err = s.DB.WithContext(ctx).Exec(
		`insert into share_viewers (share_id, ip, user_agent, email, viewed_at)
		 values (?, ?, ?, ?, ?)
		 on conflict (share_id, ip) do nothing`,
		sh.ID, v.IP, ua, strings.ToLower(strings.TrimSpace(email)), now,
	).Error
	if err != nil {
		s.Log.Warn("failed to record share viewer", "share_id", sh.ID, "error", err)
	}
}

// publicView strips credential material before the share leaves the gate.
func publicView(sh *Share) *Share {
	out := *sh
	out.PasswordHash = nil
	out.AllowedEmails = nil
	return &out
}

func (s *Service) ListMine(ctx context.Context, userID uint64) ([]Share, error) {
	var shares []Share
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&shares).Error
	return shares, err
}

func (s *Service) getOwned(ctx context.Context, userID, id uint64) (*Share, error) {
	var sh Share
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("share not found")
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

type UpdateInput struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	IsPublic      *bool    `json:"isPublic"`
	IsActive      *bool    `json:"isActive"`
	Password      *string  `json:"password"`
	AllowedEmails []string `json:"allowedEmails"`
	ExpiresInDays *int     `json:"expiresInDays"`
}

// Update applies a partial update. A non-empty password re-hashes and turns
// protection on; an explicit empty password turns it off.
func (s *Service) Update(ctx context.Context, userID, id uint64, in UpdateInput) (*Share, error) {
	sh, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.AllowedEmails != nil {
		emails := normalizeEmails(in.AllowedEmails)
		updates["allowed_emails"] = emails
		if len(emails) > 0 {
			updates["is_public"] = false
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			updates["password_hash"] = nil
			updates["has_password"] = false
		} else {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return nil, err
			}
			updates["password_hash"] = hash
			updates["has_password"] = true
		}
	}
	if in.ExpiresInDays != nil {
		if *in.ExpiresInDays > 0 {
			updates["expires_at"] = time.Now().AddDate(0, 0, *in.ExpiresInDays)
		} else {
			updates["expires_at"] = nil
		}
	}
	if len(updates) == 0 {
		return sh, nil
	}

	if err := s.DB.WithContext(ctx).Model(sh).Updates(updates).Error; err != nil {
		return nil, err
	}
	sh, err = s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.ExpiresInDays != nil {
		if err := s.Jobs.CancelPurge(ctx, sh.ID); err != nil {
			s.Log.Warn("failed to cancel share purge", "share_id", sh.ID, "error", err)
		}
		if sh.ExpiresAt != nil {
			s.enqueuePurge(ctx, sh)
		}
	}
	return sh, nil
}

// Revoke deactivates the share while keeping it for analytics. One-way.
func (s *Service) Revoke(ctx context.Context, userID, id uint64) (*Share, error) {
	sh, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(sh).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return sh, nil
}

// Delete removes the share row and its viewer history entirely.
func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	sh, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("share_id = ?", sh.ID).Delete(&ShareViewer{}).Error; err != nil {
			return err
		}
		return tx.Delete(sh).Error
	})
	if err != nil {
		return err
	}
	if err := s.Jobs.CancelPurge(ctx, sh.ID); err != nil {
		s.Log.Warn("failed to cancel share purge", "share_id", sh.ID, "error", err)
	}
	return nil
}

type Analytics struct {
	ViewCount     int64         `json:"viewCount"`
	UniqueViewers int64         `json:"uniqueViewers"`
	LastViewedAt  *time.Time    `json:"lastViewedAt"`
	Viewers       []ShareViewer `json:"viewers"`
}

func (s *Service) Analytics(ctx context.Context, userID, id uint64) (*Analytics, error) {
	sh, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var viewers []ShareViewer
	err = s.DB.WithContext(ctx).
		Where("share_id = ?", sh.ID).
		Order("viewed_at asc").
		Find(&viewers).Error
	if err != nil {
		return nil, err
	}

	return &Analytics{
		ViewCount:     sh.ViewCount,
		UniqueViewers: int64(len(viewers)),
		LastViewedAt:  sh.LastViewedAt,
		Viewers:       viewers,
	}, nil
}

func normalizeEmails(in []string) pq.StringArray {
	var out pq.StringArray
	seen := map[string]bool{}
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
