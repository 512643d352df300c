package content

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

type UploadInput struct {
	FileName   string
	Size       int64
	MimeType   string
	StorageKey string
	Title      string // optional, defaults to the file name
	Tags       []string
}

// CreateFromPDF persists an uploaded PDF whose text has already been
// extracted. The fingerprint is keyed on title plus storage key since body
// text may legitimately differ between extraction runs.
func (s *Service) CreateFromPDF(ctx context.Context, userID uint64, in UploadInput, text string, pageCount, wordCount int) (*Content, error) {
	title := in.Title
	if title == "" {
		title = titleFromFileName(in.FileName)
	}

	sum := s.summarizeOrFallback(ctx, title, "", text)

	meta := DocumentMetadata{
		FileName:          in.FileName,
		FileSize:          in.Size,
		StorageKey:        in.StorageKey,
		MimeType:          in.MimeType,
		PageCount:         pageCount,
		WordCount:         wordCount,
		ProcessedAt:       time.Now(),
		IsFallbackSummary: sum.IsFallback,
		AIModel:           sum.Model,
	}
	if !sum.IsFallback {
		now := time.Now()
		meta.SummarizedAt = &now
	}

	hash := Fingerprint(TypeDocument, title, "", in.StorageKey)
	return s.createWithHash(ctx, userID, CreateInput{
		Type:      TypeDocument,
		Title:     title,
		Body:      truncate(text, maxStoredBody),
		Tags:      MergeTags(sum.Tags, append(in.Tags, "pdf"), maxTags),
		Summary:   sum.Summary,
		KeyPoints: sum.KeyPoints,
		Metadata:  marshalMetadata(meta),
	}, hash)
}

// CreateFromImage persists an uploaded image. Text extraction (OCR) is an
// optional collaborator; when absent the item carries metadata only, which
// is not a failure.
func (s *Service) CreateFromImage(ctx context.Context, userID uint64, in UploadInput, ocrText string, ocrConfidence float64) (*Content, error) {
	title := in.Title
	if title == "" {
		title = titleFromFileName(in.FileName)
	}

	meta := ImageMetadata{
		FileName:      in.FileName,
		FileSize:      in.Size,
		StorageKey:    in.StorageKey,
		MimeType:      in.MimeType,
		OCRConfidence: ocrConfidence,
		ProcessedAt:   time.Now(),
	}

	hash := Fingerprint(TypeImage, title, "", in.StorageKey)
	return s.createWithHash(ctx, userID, CreateInput{
		Type:     TypeImage,
		Title:    title,
		Body:     truncate(ocrText, maxStoredBody),
		Tags:     MergeTags(nil, append(in.Tags, "image"), maxTags),
		Metadata: marshalMetadata(meta),
	}, hash)
}

func titleFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return "Untitled Upload"
	}
	return base
}
