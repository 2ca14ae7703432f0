package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/metrics"
	"cloudpilot-backend/internal/security"
	"cloudpilot-backend/internal/service"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	AuthService         service.AuthService
	ApprovalService     service.ApprovalService
	NotificationService service.NotificationService
	VMService           service.VMService
	MetricsClient       *metrics.Client
	RoleRouter          *service.RoleRouter
	TokenManager        security.TokenManager
}

// NewRouter wires all API routes. Everything except login, logout and
// password reset sits behind the session token; approval decisions are
// additionally gated by role.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := NewAuthHandler(deps.AuthService, deps.RoleRouter)
	requestHandler := NewRequestHandler(deps.ApprovalService)
	noteHandler := NewNotificationHandler(deps.NotificationService)
	vmHandler := NewVMHandler(deps.VMService)
	metricsHandler := NewMetricsHandler(deps.MetricsClient)
	authMW := NewAuthMiddleware(deps.TokenManager)

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes.
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/password-reset", authHandler.RequestPasswordReset).Methods(http.MethodPost)

	// Session-scoped routes.
	session := api.NewRoute().Subrouter()
	session.Use(authMW.Authenticate)

	session.HandleFunc("/roles/landing", authHandler.Landing).Methods(http.MethodGet)

	session.HandleFunc("/requests", requestHandler.Submit).Methods(http.MethodPost)
	session.HandleFunc("/requests", requestHandler.List).Methods(http.MethodGet)
	session.HandleFunc("/requests/{id}", requestHandler.Get).Methods(http.MethodGet)

	firstApproval := session.PathPrefix("/requests/{id}/first-approval").Subrouter()
	firstApproval.Use(RequireRoles(domain.SessionRoleLeader, domain.SessionRoleHead, domain.SessionRoleAdmin))
	firstApproval.HandleFunc("", requestHandler.FirstApproval).Methods(http.MethodPost)

	finalApproval := session.PathPrefix("/requests/{id}/final-approval").Subrouter()
	finalApproval.Use(RequireRoles(domain.SessionRoleHead, domain.SessionRoleAdmin))
	finalApproval.HandleFunc("", requestHandler.FinalApproval).Methods(http.MethodPost)

	session.HandleFunc("/notifications", noteHandler.List).Methods(http.MethodGet)
	session.HandleFunc("/notifications/unread-count", noteHandler.UnreadCount).Methods(http.MethodGet)
	session.HandleFunc("/notifications/{id}/read", noteHandler.MarkAsRead).Methods(http.MethodPost)

	session.HandleFunc("/vms", vmHandler.Create).Methods(http.MethodPost)
	session.HandleFunc("/vms", vmHandler.List).Methods(http.MethodGet)
	session.HandleFunc("/vms/presets", vmHandler.Presets).Methods(http.MethodGet)
	session.HandleFunc("/vms/packages", vmHandler.InstallPackages).Methods(http.MethodPost)
	session.HandleFunc("/vms/{id}", vmHandler.Get).Methods(http.MethodGet)
	session.HandleFunc("/vms/{id}/task", vmHandler.GetTask).Methods(http.MethodGet)
	session.HandleFunc("/vms/{id}/assignments", vmHandler.Assign).Methods(http.MethodPut)

	session.HandleFunc("/packages/installed", vmHandler.ListInstalledPackages).Methods(http.MethodGet)

	session.HandleFunc("/metrics/query", metricsHandler.Query).Methods(http.MethodPost)
	session.HandleFunc("/dashboard/embed-url", metricsHandler.EmbedURL).Methods(http.MethodPost)

	return r
}
