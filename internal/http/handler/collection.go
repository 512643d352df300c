package handler

import (
	"encoding/json"
	"net/http"

	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
)

type CollectionHandler struct {
	Svc *collection.Service
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req collection.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	col, err := h.Svc.Create(r.Context(), uid, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, col)
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	cols, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cols)
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	col, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, col)
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req collection.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	col, err := h.Svc.Update(r.Context(), uid, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, col)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	respondMessage(w, http.StatusOK, "collection deleted")
}
