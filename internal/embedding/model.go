package embedding

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Dim is the vector width. The column type below and the model's output
// dimensionality are both pinned to it; changing one without the other
// breaks inserts.
const Dim int32 = 768

// ContentEmbedding holds one vector per content item. SourceText keeps the
// exact text that was embedded so staleness can be inspected.
type ContentEmbedding struct {
	ID         uint64          `gorm:"primaryKey" json:"id"`
	ContentID  uint64          `gorm:"not null;uniqueIndex" json:"contentId"`
	UserID     uint64          `gorm:"not null;index" json:"-"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	Model      string          `gorm:"size:100;not null" json:"model"`
	SourceText string          `gorm:"type:text" json:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (ContentEmbedding) TableName() string { return "content_embeddings" }
