package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"secondbrain/internal/auth"
	"secondbrain/internal/content"
	"secondbrain/internal/storage"
)

type ContentHandler struct {
	Svc   *content.Service
	Store *storage.Store
}

type createContentReq struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	SourceURL string          `json:"sourceUrl"`
	Tags      []string        `json:"tags"`
	Summary   string          `json:"summary"`
	KeyPoints []string        `json:"keyPoints"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createContentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Svc.Create(r.Context(), uid, content.CreateInput{
		Type:      content.Type(req.Type),
		Title:     req.Title,
		Body:      req.Body,
		SourceURL: req.SourceURL,
		Tags:      req.Tags,
		Summary:   req.Summary,
		KeyPoints: req.KeyPoints,
		Metadata:  datatypes.JSON(req.Metadata),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	items, p, err := h.Svc.List(r.Context(), uid, content.ListOptions{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
		Type:   content.Type(q.Get("type")),
		Tag:    q.Get("tag"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, h.decorate(r, items), p)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.decorateOne(r, c))
}

type updateContentReq struct {
	Title    *string         `json:"title"`
	Body     *string         `json:"body"`
	Tags     []string        `json:"tags"`
	Metadata json.RawMessage `json:"metadata"`
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req updateContentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Svc.Update(r.Context(), uid, id, content.UpdateInput{
		Title:    req.Title,
		Body:     req.Body,
		Tags:     req.Tags,
		Metadata: datatypes.JSON(req.Metadata),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Svc.SoftDelete(r.Context(), uid, id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "content deleted")
}

func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	items, p, err := h.Svc.Search(r.Context(), uid,
		r.URL.Query().Get("q"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 20),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, h.decorate(r, items), p)
}

type fromURLReq struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

func (h *ContentHandler) CreateFromURL(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req fromURLReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		badRequest(w, "url is required")
		return
	}

	c, err := h.Svc.CreateFromURL(r.Context(), uid, req.URL, req.Tags)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *ContentHandler) AssignToCollection(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	contentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	collectionID, err := pathID(r, "collectionId")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.Svc.AssignToCollection(r.Context(), uid, contentID, collectionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) ListByCollection(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	collectionID, err := pathID(r, "collectionId")
	if err != nil {
		respondError(w, err)
		return
	}

	items, err := h.Svc.ListByCollection(r.Context(), uid, collectionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.decorate(r, items))
}

// decoratedContent adds a presigned download URL to file-backed items.
type decoratedContent struct {
	content.Content
	FileURL string `json:"fileUrl,omitempty"`
}

func (h *ContentHandler) decorate(r *http.Request, items []content.Content) []decoratedContent {
	out := make([]decoratedContent, len(items))
	for i := range items {
		out[i] = *h.decorateOne(r, &items[i])
	}
	return out
}

func (h *ContentHandler) decorateOne(r *http.Request, c *content.Content) *decoratedContent {
	d := &decoratedContent{Content: *c}
	if h.Store == nil {
		return d
	}
	if key := c.StorageKey(); key != "" {
		// Presign failures degrade to an item without a file URL.
		if u, err := h.Store.PresignGet(r.Context(), key); err == nil {
			d.FileURL = u
		}
	}
	return d
}
