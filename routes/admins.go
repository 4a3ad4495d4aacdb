package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/controllers/admins"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
)

// SetAdminRoutes registers routes reserved for ADMIN accounts. Every route
// goes through the same RequireAdmin gate, which re-reads the user row.
func SetAdminRoutes(api *mux.Router) {
	adminLimiter := middleware.NewIPRateLimiter(300, time.Minute)

	gated := func(h http.HandlerFunc) http.Handler {
		return adminLimiter.Middleware(middleware.AuthMiddleware(middleware.RequireAdmin(h)))
	}

	// Investment review and lifecycle
	api.Handle("/admin/investments", gated(admins.ListInvestmentsHandler)).Methods(http.MethodGet)
	api.Handle("/investments/{id}/review", gated(admins.ReviewInvestmentHandler)).Methods(http.MethodPost)
	api.Handle("/investments/{id}/complete", gated(admins.CompleteInvestmentHandler)).Methods(http.MethodPost)
	api.Handle("/investments/{id}/action", gated(admins.AdminActionHandler)).Methods(http.MethodPost)

	// Project review and archive requests
	api.Handle("/admin/projects/{id}/review", gated(admins.ReviewProjectHandler)).Methods(http.MethodPost)
	api.Handle("/admin/archive-requests", gated(admins.ListArchiveRequestsHandler)).Methods(http.MethodGet)
	api.Handle("/admin/archive-requests/{id}/review", gated(admins.ReviewArchiveRequestHandler)).Methods(http.MethodPost)

	// User management
	api.Handle("/admin/users", gated(admins.ListUsersHandler)).Methods(http.MethodGet)
	api.Handle("/admin/users/{id}/ban", gated(admins.BanUserHandler)).Methods(http.MethodPost)

	// Audit trail
	api.Handle("/admin/audit-logs", gated(admins.AuditLogsHandler)).Methods(http.MethodGet)
	api.Handle("/projects/{id}/ledger", gated(admins.ProjectLedgerHandler)).Methods(http.MethodGet)
}
