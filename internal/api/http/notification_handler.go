package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

const (
	longPollTimeout  = 25 * time.Second
	longPollInterval = 500 * time.Millisecond
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

// List returns the caller's notifications, newest first. With wait=true
// the request long-polls: it holds until at least one unread
// notification exists or the poll window elapses.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		if err := h.waitForUnread(r, claims.Role, claims.EmployeeID); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	notes, err := h.noteSvc.GetNotifications(r.Context(), claims.Role, claims.EmployeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) waitForUnread(r *http.Request, role domain.SessionRole, employeeID string) error {
	deadline := time.NewTimer(longPollTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(longPollInterval)
	defer tick.Stop()

	for {
		count, err := h.noteSvc.CountUnread(r.Context(), role, employeeID)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		select {
		case <-r.Context().Done():
			return r.Context().Err()
		case <-deadline.C:
			return nil
		case <-tick.C:
		}
	}
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.noteSvc.MarkAsRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	count, err := h.noteSvc.CountUnread(r.Context(), claims.Role, claims.EmployeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int32{"unread": count})
}
