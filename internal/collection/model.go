package collection

import "time"

// Collection groups a user's saved content. Names are unique per user among
// live collections, enforced by a partial index.
type Collection struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	UserID      uint64     `gorm:"not null;index" json:"-"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	IsDeleted   bool       `gorm:"not null;default:false" json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// ContentCount is computed at read time, not stored.
	ContentCount int64 `gorm:"-" json:"contentCount"`
}
