package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"secondbrain/internal/auth"
	"secondbrain/internal/share"
)

type ShareHandler struct {
	Svc *share.Service
}

func (h *ShareHandler) CreateForContent(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	contentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req share.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	sh, err := h.Svc.CreateForContent(r.Context(), uid, contentID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.withURL(sh))
}

func (h *ShareHandler) CreateForCollection(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	collectionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req share.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	sh, err := h.Svc.CreateForCollection(r.Context(), uid, collectionID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.withURL(sh))
}

// ResolveContent is public: token possession is the credential, the body may
// carry password/email for gated shares. An empty or missing body is fine.
func (h *ShareHandler) ResolveContent(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var access share.Access
	_ = json.NewDecoder(r.Body).Decode(&access)

	res, err := h.Svc.ResolveContent(r.Context(), token, visitor(r), access)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *ShareHandler) ResolveCollection(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var access share.Access
	_ = json.NewDecoder(r.Body).Decode(&access)

	res, err := h.Svc.ResolveCollection(r.Context(), token, visitor(r), access)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *ShareHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	shares, err := h.Svc.ListMine(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]shareWithURL, len(shares))
	for i := range shares {
		out[i] = *h.withURL(&shares[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req share.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	sh, err := h.Svc.Update(r.Context(), uid, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.withURL(sh))
}

func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	sh, err := h.Svc.Revoke(r.Context(), uid, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.withURL(sh))
}

func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), uid, id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "share deleted")
}

func (h *ShareHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := h.Svc.Analytics(r.Context(), uid, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type shareWithURL struct {
	share.Share
	ShareURL string `json:"shareUrl"`
}

func (h *ShareHandler) withURL(sh *share.Share) *shareWithURL {
	return &shareWithURL{Share: *sh, ShareURL: h.Svc.URL(sh)}
}

// visitor relies on the RealIP middleware having rewritten RemoteAddr.
func visitor(r *http.Request) share.Visitor {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return share.Visitor{IP: host, UserAgent: r.UserAgent()}
}
