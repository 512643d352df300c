package auth

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is a registered account. PasswordHash is empty for federated
// sign-ins; reset token fields are populated only while a password reset
// is pending and hold a SHA-256 of the emailed token, never the token itself.
type User struct {
	ID           uint64 `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:text" json:"-"`
	Provider     string `gorm:"not null;default:'local'" json:"provider"`

	ResetTokenHash   *string    `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"-"`
}
