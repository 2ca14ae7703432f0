package repository

import (
	"context"
	"errors"
	"time"

	"cloudpilot-backend/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type PackageRequestRepository interface {
	Create(ctx context.Context, req *domain.PackageRequest) error
	GetByID(ctx context.Context, id string) (*domain.PackageRequest, error)
	List(ctx context.Context) ([]domain.PackageRequest, error)
	ListByRequesterRole(ctx context.Context, role domain.RequesterRole) ([]domain.PackageRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error)
	ListFirstPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.PackageRequest, error)

	// SetFirstApproval transitions the first-line status away from pending.
	// The update is conditional on the row still being pending; the bool
	// result reports whether this caller committed the transition.
	SetFirstApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error)

	// SetFinalApproval transitions the final status away from pending. The
	// update is conditional on first = approved and final = pending.
	SetFinalApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	// ListForRecipient returns notifications addressed to the given role
	// queue or directly to the given employee, newest first.
	ListForRecipient(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.SessionRole) ([]domain.User, error)
	ListByTeam(ctx context.Context, team string) ([]domain.User, error)
}

type VMRepository interface {
	Create(ctx context.Context, vm *domain.VirtualMachine) error
	GetByID(ctx context.Context, id string) (*domain.VirtualMachine, error)
	List(ctx context.Context) ([]domain.VirtualMachine, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.VirtualMachine, error)
	UpdateAssignments(ctx context.Context, id string, assignments map[int32]string) error
}

type ProvisionTaskRepository interface {
	Create(ctx context.Context, task *domain.ProvisionTask) error
	GetByID(ctx context.Context, id string) (*domain.ProvisionTask, error)
	GetByVM(ctx context.Context, vmID string) (*domain.ProvisionTask, error)
	// ClaimNextQueued atomically moves the oldest queued task to running
	// and returns it. Returns ErrNotFound when the queue is empty.
	ClaimNextQueued(ctx context.Context) (*domain.ProvisionTask, error)
	UpdateStage(ctx context.Context, id, stage string) error
	Complete(ctx context.Context, id string, state domain.TaskState, message string) error
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type InstalledPackageRepository interface {
	CreateBatch(ctx context.Context, pkgs []domain.InstalledPackage) error
	List(ctx context.Context) ([]domain.InstalledPackage, error)
	ListByVM(ctx context.Context, vmID string) ([]domain.InstalledPackage, error)
}
