package service

import (
	"context"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	router   *RoleRouter
}

func NewNotificationService(noteRepo repository.NotificationRepository, router *RoleRouter) NotificationService {
	return &notificationService{noteRepo: noteRepo, router: router}
}

func (s *notificationService) GetNotifications(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error) {
	return s.noteRepo.ListForRecipient(ctx, s.router.QueueRoleFor(role), employeeID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID)
}

func (s *notificationService) CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error) {
	return s.noteRepo.CountUnread(ctx, s.router.QueueRoleFor(role), employeeID)
}
