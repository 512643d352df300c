package handler

import (
	"io"
	"net/http"
	"strings"

	"secondbrain/internal/apperr"
	"secondbrain/internal/auth"
	"secondbrain/internal/content"
	"secondbrain/internal/extract"
	"secondbrain/internal/storage"
)

const maxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type UploadHandler struct {
	Svc   *content.Service
	Store *storage.Store
}

// Upload accepts a multipart form with a "file" part plus optional "title"
// and comma-separated "tags" fields. PDFs get their text extracted before
// the content row is written.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	if h.Store == nil {
		respondError(w, apperr.Upstream("file storage is not configured", nil))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "file too large or malformed upload (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !allowedMimeTypes[mimeType] {
		badRequest(w, "unsupported file type: only JPEG, PNG, GIF, WebP and PDF are accepted")
		return
	}

	key := storage.ObjectKey(mimeType, header.Filename)
	if err := h.Store.Upload(r.Context(), key, mimeType, data); err != nil {
		respondError(w, err)
		return
	}

	in := content.UploadInput{
		FileName:   header.Filename,
		Size:       header.Size,
		MimeType:   mimeType,
		StorageKey: key,
		Title:      strings.TrimSpace(r.FormValue("title")),
		Tags:       splitTags(r.FormValue("tags")),
	}

	var c *content.Content
	if mimeType == "application/pdf" {
		res, err := extract.PDFText(data)
		if err != nil {
			respondError(w, err)
			return
		}
		c, err = h.Svc.CreateFromPDF(r.Context(), uid, in, res.Text, res.PageCount, res.WordCount)
		if err != nil {
			respondError(w, err)
			return
		}
	} else {
		c, err = h.Svc.CreateFromImage(r.Context(), uid, in, "", 0)
		if err != nil {
			respondError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusCreated, c)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
