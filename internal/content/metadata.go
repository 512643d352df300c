package content

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Per-type metadata shapes. One of these is marshalled into Content.Metadata
// depending on Content.Type, which keeps field names consistent while the
// column stays a single jsonb bag.

type LinkMetadata struct {
	Author            string     `json:"author,omitempty"`
	PublishedAt       string     `json:"publishedAt,omitempty"`
	Image             string     `json:"image,omitempty"`
	WordCount         int        `json:"wordCount,omitempty"`
	ReadingTimeMin    int        `json:"readingTimeMinutes,omitempty"`
	ScrapedAt         time.Time  `json:"scrapedAt,omitempty"`
	SummarizedAt      *time.Time `json:"summarizedAt,omitempty"`
	IsFallbackSummary bool       `json:"isFallbackSummary,omitempty"`
	AIModel           string     `json:"aiModel,omitempty"`
}

type DocumentMetadata struct {
	FileName          string     `json:"fileName"`
	FileSize          int64      `json:"fileSize"`
	StorageKey        string     `json:"storageKey"`
	MimeType          string     `json:"mimeType"`
	PageCount         int        `json:"pageCount,omitempty"`
	WordCount         int        `json:"wordCount,omitempty"`
	ProcessedAt       time.Time  `json:"processedAt"`
	SummarizedAt      *time.Time `json:"summarizedAt,omitempty"`
	IsFallbackSummary bool       `json:"isFallbackSummary,omitempty"`
	AIModel           string     `json:"aiModel,omitempty"`
}

type ImageMetadata struct {
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	StorageKey    string    `json:"storageKey"`
	MimeType      string    `json:"mimeType"`
	OCRConfidence float64   `json:"ocrConfidence,omitempty"`
	ProcessedAt   time.Time `json:"processedAt"`
}

func marshalMetadata(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// StorageKey extracts the object-store key from document/image metadata.
// Returns "" for types without a stored file.
func (c *Content) StorageKey() string {
	if c.Type != TypeDocument && c.Type != TypeImage || len(c.Metadata) == 0 {
		return ""
	}
	var m struct {
		StorageKey string `json:"storageKey"`
	}
	if err := json.Unmarshal(c.Metadata, &m); err != nil {
		return ""
	}
	return m.StorageKey
}
