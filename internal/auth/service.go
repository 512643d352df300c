package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"secondbrain/internal/apperr"
	"secondbrain/internal/jobs"
	"secondbrain/internal/mail"
)

const resetTokenTTL = 10 * time.Minute

type Service struct {
	DB          *gorm.DB
	JWT         *JWT
	Mailer      mail.Mailer
	Jobs        *jobs.Repo
	FrontendURL string
	Log         *slog.Logger
}

// Register creates a local account and returns it with a signed token.
// The welcome email is a best-effort background job; its failure never
// affects registration.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := User{Name: name, Email: email, PasswordHash: hash, Provider: ProviderLocal}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperr.Conflict("email already registered")
		}
		return nil, "", err
	}

	if err := s.Jobs.Enqueue(ctx, jobs.Job{
		UserID: u.ID,
		Type:   jobs.TypeWelcomeEmail,
		RunAt:  time.Now(),
		Status: jobs.StatusPending,
	}); err != nil {
		s.Log.Error("enqueue welcome email", "user_id", u.ID, "err", err)
	}

	token, err := s.JWT.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, "", apperr.Unauthorized("invalid email or password")
	}
	if u.PasswordHash == "" || !ComparePassword(u.PasswordHash, password) {
		return nil, "", apperr.Unauthorized("invalid email or password")
	}

	token, err := s.JWT.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *Service) Me(ctx context.Context, userID uint64) (*User, error) {
	var u User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

// ForgotPassword issues a single-use reset token valid for ten minutes and
// emails it. The reset mail is a required step here: if delivery fails the
// token is rolled back so a stale token can never be redeemed. For unknown
// emails it returns nil so the caller cannot enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		s.Log.Warn("password reset for unknown email", "email", email)
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	hashed := hashToken(token)
	expiry := time.Now().Add(resetTokenTTL)

	if err := s.DB.WithContext(ctx).Model(&u).Updates(map[string]any{
		"reset_token_hash":   hashed,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		return err
	}

	subject, body := mail.PasswordReset(u.Name, s.resetURL(token))
	if err := s.Mailer.Send(ctx, u.Email, subject, body); err != nil {
		_ = s.DB.WithContext(ctx).Model(&u).Updates(map[string]any{
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		}).Error
		return apperr.Upstream("failed to send password reset email", err)
	}

	s.Log.Info("password reset email sent", "user_id", u.ID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hashed := hashToken(token)

	var u User
	err := s.DB.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", hashed, time.Now()).
		First(&u).Error
	if err != nil {
		return apperr.Validation("invalid or expired reset token")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&u).Updates(map[string]any{
		"password_hash":      hash,
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
	}).Error
}

func (s *Service) resetURL(token string) string {
	return strings.TrimRight(s.FrontendURL, "/") + "/reset-password?token=" + token
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
