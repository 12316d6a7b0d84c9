package handler

import (
	"net/http"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/pkg/auth"
)

// Routes collects the handlers and route-level policy for the API mux.
type Routes struct {
	Base    *Handler
	Contact *ContactHandler
	Auth    *AuthHandler
	Chat    *ChatHandler
	Legal   *LegalHandler
	// Providers is optional; GET /api/auth/providers is not registered when nil.
	Providers *ProvidersHandler

	// Limiter guards the public POST endpoints.
	Limiter       *RateLimiter
	SessionSecret []byte
	// PublicContactList opens GET /api/admin/contacts to unauthenticated callers.
	PublicContactList bool
}

// Mux registers every route. Each contact mutation sits behind RequireAdmin.
func (rt Routes) Mux() *http.ServeMux {
	admin := auth.RequireAdmin(rt.SessionSecret, model.RoleAdmin, model.RoleModerator)
	limited := func(f http.HandlerFunc) http.Handler { return rt.Limiter.Middleware(f) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", rt.Base.Health)
	mux.HandleFunc("GET /api/legal/{type}", rt.Legal.Legal)

	// Public submission and chat
	mux.Handle("POST /api/contact", limited(rt.Contact.Submit))
	mux.Handle("POST /api/chat", limited(rt.Chat.Chat))

	// Admin auth
	mux.Handle("POST /api/auth/login", limited(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.Handle("GET /api/auth/session", admin(http.HandlerFunc(rt.Auth.Session)))
	mux.HandleFunc("GET /api/auth/google/login", rt.Auth.GoogleLoginURL)
	mux.HandleFunc("GET /api/auth/google/callback", rt.Auth.GoogleCallback)
	if rt.Providers != nil {
		mux.HandleFunc("GET /api/auth/providers", rt.Providers.Providers)
	}

	// Contact panel
	var list http.Handler = http.HandlerFunc(rt.Contact.List)
	if !rt.PublicContactList {
		list = admin(list)
	}
	mux.Handle("GET /api/admin/contacts", list)
	mux.Handle("GET /api/admin/contacts/summary", admin(http.HandlerFunc(rt.Contact.Summary)))
	mux.Handle("GET /api/admin/contacts/{id}", admin(http.HandlerFunc(rt.Contact.Get)))
	mux.Handle("PUT /api/admin/contacts", admin(http.HandlerFunc(rt.Contact.Update)))
	mux.Handle("PATCH /api/admin/contacts/{id}", admin(http.HandlerFunc(rt.Contact.Update)))

	return mux
}

// Handler wraps the mux with the standard middleware chain.
func (rt Routes) Handler() http.Handler {
	return RequestLogger(SecurityHeaders(rt.Base.CORS(rt.Mux())))
}
