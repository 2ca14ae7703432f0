package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/metrics"
	"cloudpilot-backend/internal/repository"
	"cloudpilot-backend/internal/service"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-layer errors onto HTTP statuses.
// Validation failures carry per-field messages so the UI can render them
// inline.
func respondServiceError(w http.ResponseWriter, err error) {
	var fieldErrs service.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fieldErrs})
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotAwaitingApproval):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyPackageList),
		errors.Is(err, service.ErrPackageNameRequired),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNoInstallTargets),
		errors.Is(err, metrics.ErrMissingServerURL),
		errors.Is(err, metrics.ErrMissingQuery):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNoApprovalAccess):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, metrics.ErrQueryFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("Unhandled service error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
