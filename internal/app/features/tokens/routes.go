// internal/app/features/tokens/routes.go
package tokens

import (
	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
)

// Routes mounts the API token lifecycle routes (at /tokens from bootstrap).
// The issue route uses OptionalToken instead of RequireToken so the
// bootstrap token can mint the first credential; the handler does its own
// fallback authentication.
func Routes(h *Handler, svc *auth.Service) chi.Router {
	r := chi.NewRouter()

	r.With(svc.OptionalToken).Post("/", h.ServeIssue)

	r.Group(func(pr chi.Router) {
		pr.Use(svc.RequireToken)
		pr.Get("/", h.ServeList)
		pr.Delete("/{tokenID}", h.ServeRevoke)
	})

	return r
}
