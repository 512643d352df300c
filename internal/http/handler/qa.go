package handler

import (
	"encoding/json"
	"net/http"

	"secondbrain/internal/auth"
	"secondbrain/internal/qa"
)

type QAHandler struct {
	Svc *qa.Service
}

func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req qa.AskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	answer, err := h.Svc.Ask(r.Context(), uid, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}
