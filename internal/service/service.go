package service

import (
	"context"

	"cloudpilot-backend/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, employeeID, password string) (string, *domain.User, error)
	RequestPasswordReset(ctx context.Context, employeeID, email string) error
}

type ApprovalService interface {
	Submit(ctx context.Context, requester, employeeID string, origin domain.RequesterRole, packages []domain.PackageItem) (*domain.PackageRequest, error)
	ApproveFirst(ctx context.Context, requestID string) (*domain.PackageRequest, error)
	RejectFirst(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error)
	ApproveFinal(ctx context.Context, requestID string) (*domain.PackageRequest, error)
	RejectFinal(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error)
	GetRequest(ctx context.Context, requestID string) (*domain.PackageRequest, error)
	ListAll(ctx context.Context) ([]domain.PackageRequest, error)
	ListForRole(ctx context.Context, role domain.SessionRole) ([]domain.PackageRequest, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error)
}

type VMService interface {
	CreateVM(ctx context.Context, ownerID string, spec VMSpec) (*domain.VirtualMachine, *domain.ProvisionTask, error)
	GetVM(ctx context.Context, vmID string) (*domain.VirtualMachine, error)
	ListVMs(ctx context.Context) ([]domain.VirtualMachine, error)
	GetTask(ctx context.Context, vmID string) (*domain.ProvisionTask, error)
	AssignMembers(ctx context.Context, vmID string, assignments map[int32]string) (*domain.VirtualMachine, error)
	InstallPackages(ctx context.Context, vmIDs []string, packages []domain.PackageItem) ([]domain.InstalledPackage, error)
	ListInstalledPackages(ctx context.Context) ([]domain.InstalledPackage, error)
	Presets() []VMSpec
}

type EmailService interface {
	SendApprovalRequestNotice(ctx context.Context, email, name, requester string, packageCount int) error
	SendDecisionNotice(ctx context.Context, email, name, decision, reason string) error
	SendPasswordResetNotice(ctx context.Context, email, employeeID string) error
}
