package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

type RequestHandler struct {
	approvalSvc service.ApprovalService
}

func NewRequestHandler(approvalSvc service.ApprovalService) *RequestHandler {
	return &RequestHandler{approvalSvc: approvalSvc}
}

type submitRequest struct {
	Packages []domain.PackageItem `json:"packages"`
}

func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.approvalSvc.Submit(r.Context(), claims.Name, claims.EmployeeID,
		claims.Role.RequestOriginRole(), req.Packages)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List returns the caller's view of the request collection: "queue"
// filters to requests awaiting the caller's approval, "mine" to the
// caller's own submissions, and the default is everything.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var (
		reqs []domain.PackageRequest
		err  error
	)
	switch r.URL.Query().Get("view") {
	case "queue":
		reqs, err = h.approvalSvc.ListForRole(r.Context(), claims.Role)
	case "mine":
		reqs, err = h.approvalSvc.ListForEmployee(r.Context(), claims.EmployeeID)
	default:
		reqs, err = h.approvalSvc.ListAll(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if reqs == nil {
		reqs = []domain.PackageRequest{}
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.approvalSvc.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

type decisionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

func (h *RequestHandler) FirstApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalSvc.ApproveFirst, h.approvalSvc.RejectFirst)
}

func (h *RequestHandler) FinalApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalSvc.ApproveFinal, h.approvalSvc.RejectFinal)
}

func (h *RequestHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	approve func(ctx context.Context, id string) (*domain.PackageRequest, error),
	reject func(ctx context.Context, id, reason string) (*domain.PackageRequest, error),
) {
	id := mux.Vars(r)["id"]

	var req decisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		updated *domain.PackageRequest
		err     error
	)
	switch req.Action {
	case "approve":
		updated, err = approve(r.Context(), id)
	case "reject":
		updated, err = reject(r.Context(), id, req.Reason)
	default:
		respondError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
