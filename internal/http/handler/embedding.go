package handler

import (
	"encoding/json"
	"net/http"

	"secondbrain/internal/auth"
	"secondbrain/internal/embedding"
)

type EmbeddingHandler struct {
	Svc *embedding.Service
}

func (h *EmbeddingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	contentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	emb, err := h.Svc.Generate(r.Context(), uid, contentID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, emb)
}

type semanticSearchReq struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

func (h *EmbeddingHandler) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req semanticSearchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	threshold := 0.3
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	matches, err := h.Svc.SemanticSearch(r.Context(), uid, req.Query, req.Limit, threshold)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}
