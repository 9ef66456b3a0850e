// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
)

// Routes mounts the workspace management routes (at /workspaces from
// bootstrap). The wallet subtree is passed in so the whole
// /workspaces/{workspaceID}/wallet tree sits behind one token check.
func Routes(h *Handler, svc *auth.Service, wallet chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Use(svc.RequireToken)

	r.Post("/", h.ServeCreate)
	r.Route("/{workspaceID}", func(wr chi.Router) {
		wr.Get("/", h.ServeGet)
		wr.Post("/members", h.ServeAddMember)
		wr.Put("/settings/auto-approval", h.ServeSetThreshold)
		wr.Get("/settings/auth-methods", h.ServeGetAuthMethods)
		wr.Put("/settings/auth-methods", h.ServeSetAuthMethods)
		wr.Mount("/wallet", wallet)
	})

	return r
}
