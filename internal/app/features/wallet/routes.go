// internal/app/features/wallet/routes.go
package wallet

import (
	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
)

// Routes returns the wallet subtree, mounted by the workspaces feature at
// /workspaces/{workspaceID}/wallet behind its RequireToken middleware. Role
// checks happen in the wallet manager, which knows each operation's
// authorization rule.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeInitialize)
	r.Get("/", h.ServeInfo)

	r.Post("/requests", h.ServeCreateRequest)
	r.Get("/requests/pending", h.ServePendingRequests)

	r.Put("/permissions/{userID}", h.ServeUpdatePermissions)
	r.Post("/backup-admins/{userID}", h.ServeDesignateBackupAdmin)
	r.Delete("/backup-admins/{userID}", h.ServeRemoveBackupAdmin)

	r.Post("/freeze", h.ServeFreeze)
	r.Post("/unfreeze", h.ServeUnfreeze)
	r.Post("/emergency-unfreeze", h.ServeEmergencyUnfreeze)
	r.Post("/emergency-ack", h.ServeAcknowledgeEmergency)

	r.Get("/audit", h.ServeAuditTrail)
	r.Get("/audit/report", h.ServeComplianceReport)
	r.Get("/audit/{auditID}/verify", h.ServeVerifyIntegrity)

	return r
}

// ReviewRoutes returns the request review subtree, mounted at /requests.
// Review is addressed by request ID alone because the admin may not know
// the workspace the request belongs to.
func ReviewRoutes(h *Handler, svc *auth.Service) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(svc.RequireToken)
		pr.Post("/{requestID}/review", h.ServeReview)
	})
	return r
}
