package content

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Type string

const (
	TypeText     Type = "text"
	TypeLink     Type = "link"
	TypeImage    Type = "image"
	TypeDocument Type = "document"
)

func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeLink, TypeImage, TypeDocument:
		return true
	}
	return false
}

// Content is a saved knowledge item. Collection membership lives on this side
// as an id array; deletion is a flag flip and every read path filters it.
type Content struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	UserID uint64 `gorm:"index;not null" json:"-"`
	Type   Type   `gorm:"type:text;not null" json:"type"`

	Title     string `gorm:"type:text" json:"title"`
	Body      string `gorm:"type:text" json:"body,omitempty"`
	SourceURL string `gorm:"type:text" json:"sourceUrl,omitempty"`

	Tags pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`

	// AI-derived enrichment; optional, filled by the summarizer.
	Summary   string         `gorm:"type:text" json:"summary,omitempty"`
	KeyPoints pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"keyPoints,omitempty"`

	// Type-dependent metadata bag, see metadata.go for the per-type shapes.
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Dedup fingerprint, unique per user among non-deleted rows.
	ContentHash string `gorm:"index" json:"-"`

	CollectionIDs pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"collections"`

	IsDeleted bool       `gorm:"index;not null;default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

// InCollection reports membership without touching the database.
func (c *Content) InCollection(collectionID uint64) bool {
	for _, id := range c.CollectionIDs {
		if uint64(id) == collectionID {
			return true
		}
	}
	return false
}
