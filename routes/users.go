package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/controllers/auth"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/controllers/media"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/controllers/projects"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/controllers/users"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
)

// UsersRoutes registers authentication and user-level routes.
func UsersRoutes(api *mux.Router) {
	// Login/register limiter: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// General session limiter: 120 per IP per minute
	userLimiter := middleware.NewIPRateLimiter(120, time.Minute)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	// Auth
	api.Handle("/auth/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/auth/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/auth/logout", userLimiter.Middleware(http.HandlerFunc(auth.LogoutHandler))).Methods(http.MethodPost)
	api.Handle("/auth/logout-all", authed(auth.LogoutAllHandler)).Methods(http.MethodPost)

	// Profile
	api.Handle("/users/me", authed(users.ProfileHandler)).Methods(http.MethodGet)
	api.Handle("/users/me", authed(users.UpdateProfileHandler)).Methods(http.MethodPut)

	// Projects
	api.Handle("/projects", authed(projects.ListProjectsHandler)).Methods(http.MethodGet)
	api.Handle("/projects", authed(projects.CreateProjectHandler)).Methods(http.MethodPost)
	api.Handle("/projects/{id}", authed(projects.GetProjectHandler)).Methods(http.MethodGet)
	api.Handle("/projects/{id}", authed(projects.UpdateProjectHandler)).Methods(http.MethodPut)
	api.Handle("/projects/{id}/submit", authed(projects.SubmitProjectHandler)).Methods(http.MethodPost)
	api.Handle("/projects/{id}/archive", authed(projects.ArchiveProjectHandler)).Methods(http.MethodPost)

	// Investments
	api.Handle("/investments", authed(users.CreateInvestmentHandler)).Methods(http.MethodPost)
	api.Handle("/investments", authed(users.ListInvestmentsHandler)).Methods(http.MethodGet)
	api.Handle("/investments/{id}", authed(users.GetInvestmentHandler)).Methods(http.MethodGet)
	api.Handle("/investments/{id}/pay", authed(users.PayInvestmentHandler)).Methods(http.MethodPost)
	api.Handle("/investments/{id}/revoke", authed(users.RevokeInvestmentHandler)).Methods(http.MethodPost)

	// Wallet and payments
	api.Handle("/wallet", authed(users.WalletHandler)).Methods(http.MethodGet)
	api.Handle("/payments", authed(users.PaymentsHandler)).Methods(http.MethodGet)

	// Notifications
	api.Handle("/notifications", authed(users.NotificationsHandler)).Methods(http.MethodGet)
	api.Handle("/notifications/{id}/read", authed(users.MarkNotificationReadHandler)).Methods(http.MethodPost)

	// Media upload
	api.Handle("/media/upload", authed(media.UploadHandler)).Methods(http.MethodPost)
}
