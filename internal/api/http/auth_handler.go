package http

import (
	"net/http"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
	router  *service.RoleRouter
}

func NewAuthHandler(authSvc service.AuthService, router *service.RoleRouter) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, router: router}
}

type loginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token       string       `json:"token"`
	User        *domain.User `json:"user"`
	LandingPage string       `json:"landing_page"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "employee ID and password are required")
		return
	}

	token, user, err := h.authSvc.Login(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:       token,
		User:        user,
		LandingPage: h.router.LandingPageFor(user.Role),
	})
}

// Logout is stateless: the session lives entirely in the token, so the
// server only acknowledges and the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type passwordResetRequest struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "employee ID and email are required")
		return
	}

	if err := h.authSvc.RequestPasswordReset(r.Context(), req.EmployeeID, req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	// Same response whether or not the account exists.
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset notice sent if the account exists"})
}

type landingResponse struct {
	LandingPage    string `json:"landing_page"`
	ApprovalScreen string `json:"approval_screen,omitempty"`
}

// Landing reports where the current session should be routed: its landing
// page, and its approval screen when the role has one.
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	resp := landingResponse{LandingPage: h.router.LandingPageFor(claims.Role)}
	if screen, err := h.router.ApprovalScreenFor(claims.Role); err == nil {
		resp.ApprovalScreen = screen
	}
	respondJSON(w, http.StatusOK, resp)
}
