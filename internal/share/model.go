package share

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/lib/pq"
)

const (
	TargetContent    = "content"
	TargetCollection = "collection"
)

// Share is a public access grant over one content item or collection,
// resolvable by token without authentication. PasswordHash and AllowedEmails
// gate resolution; ViewCount and ShareViewer rows record access.
type Share struct {
	ID            uint64         `gorm:"primaryKey" json:"id"`
	UserID        uint64         `gorm:"not null;index" json:"-"`
	Token         string         `gorm:"size:64;not null;uniqueIndex" json:"token"`
	TargetType    string         `gorm:"size:20;not null" json:"targetType"`
	TargetID      uint64         `gorm:"not null" json:"targetId"`
	Title         string         `gorm:"size:500" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	IsPublic      bool           `gorm:"not null;default:true" json:"isPublic"`
	IsActive      bool           `gorm:"not null;default:true" json:"isActive"`
	PasswordHash  *string        `gorm:"size:100" json:"-"`
	HasPassword   bool           `gorm:"not null;default:false" json:"hasPassword"`
	AllowedEmails pq.StringArray `gorm:"type:text[]" json:"allowedEmails"`
	ExpiresAt     *time.Time     `json:"expiresAt"`
	ViewCount     int64          `gorm:"not null;default:0" json:"viewCount"`
	LastViewedAt  *time.Time     `json:"lastViewedAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ShareViewer records the first visit from each client IP. Subsequent visits
// from the same IP only bump the share's ViewCount.
type ShareViewer struct {
	ID        uint64    `gorm:"primaryKey" json:"-"`
	ShareID   uint64    `gorm:"not null;index" json:"-"`
	IP        string    `gorm:"size:45;not null" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"userAgent,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	ViewedAt  time.Time `json:"viewedAt"`
}

func (ShareViewer) TableName() string { return "share_viewers" }

// Validity classifies a share at access time.
type Validity int

const (
	ValidityOK Validity = iota
	ValidityDeactivated
	ValidityExpired
)

func (s *Share) Validity(now time.Time) Validity {
	if !s.IsActive {
		return ValidityDeactivated
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return ValidityExpired
	}
	return ValidityOK
}

// NewToken returns a 32-character hex token from 16 random bytes.
func NewToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
