package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
	"secondbrain/internal/config"
	"secondbrain/internal/content"
	"secondbrain/internal/embedding"
	"secondbrain/internal/http/handler"
	mw "secondbrain/internal/http/middleware"
	"secondbrain/internal/qa"
	"secondbrain/internal/share"
	"secondbrain/internal/storage"
)

// Deps collects the constructed services the router wires to handlers.
type Deps struct {
	Auth        *auth.Service
	JWT         *auth.JWT
	Contents    *content.Service
	Collections *collection.Service
	Embeddings  *embedding.Service
	Shares      *share.Service
	QA          *qa.Service
	Store       *storage.Store
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Svc: d.Auth}
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)
		r.Post("/forgot-password", ah.ForgotPassword)
		r.Post("/reset-password", ah.ResetPassword)
		r.With(auth.RequireAuth(d.JWT)).Get("/me", ah.Me)
	})

	ch := &handler.ContentHandler{Svc: d.Contents, Store: d.Store}
	uh := &handler.UploadHandler{Svc: d.Contents, Store: d.Store}
	eh := &handler.EmbeddingHandler{Svc: d.Embeddings}
	r.Route("/content", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Post("/", ch.Create)
		r.Get("/", ch.List)
		r.Get("/search", ch.Search)
		r.Post("/from-url", ch.CreateFromURL)
		r.Post("/upload", uh.Upload)
		r.Post("/semantic-search", eh.SemanticSearch)

		r.Get("/{id}", ch.Get)
		r.Put("/{id}", ch.Update)
		r.Delete("/{id}", ch.Delete)
		r.Post("/{id}/embedding", eh.Generate)
		r.Post("/{id}/collections/{collectionId}", ch.AssignToCollection)
	})

	colh := &handler.CollectionHandler{Svc: d.Collections}
	r.Route("/collections", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Post("/", colh.Create)
		r.Get("/", colh.List)
		r.Get("/{id}", colh.Get)
		r.Put("/{id}", colh.Update)
		r.Delete("/{id}", colh.Delete)
		r.Get("/{collectionId}/content", ch.ListByCollection)
	})

	qh := &handler.QAHandler{Svc: d.QA}
	r.With(auth.RequireAuth(d.JWT)).Post("/qa/ask", qh.Ask)

	sh := &handler.ShareHandler{Svc: d.Shares}
	r.Route("/shares", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Get("/", sh.ListMine)
		r.Post("/content/{id}", sh.CreateForContent)
		r.Post("/collection/{id}", sh.CreateForCollection)
		r.Put("/{id}", sh.Update)
		r.Post("/{id}/revoke", sh.Revoke)
		r.Delete("/{id}", sh.Delete)
		r.Get("/{id}/analytics", sh.Analytics)
	})

	// Public resolution: token possession is the only credential, the body
	// may carry a password or email for gated shares.
	r.Post("/shared/content/{token}", sh.ResolveContent)
	r.Post("/shared/collection/{token}", sh.ResolveCollection)

	return r
}
