package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

var (
	ErrEmptyPackageList    = errors.New("request must contain at least one package")
	ErrPackageNameRequired = errors.New("every package requires a name")
	ErrReasonRequired      = errors.New("a rejection reason is required")
	// ErrNotAwaitingApproval is returned when a transition's precondition
	// does not hold, including when a concurrent caller won the
	// transition first.
	ErrNotAwaitingApproval = errors.New("request is not awaiting this approval")
)

type approvalService struct {
	reqRepo  repository.PackageRequestRepository
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
	router   *RoleRouter
}

func NewApprovalService(
	reqRepo repository.PackageRequestRepository,
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	router *RoleRouter,
) ApprovalService {
	return &approvalService{
		reqRepo:  reqRepo,
		noteRepo: noteRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		router:   router,
	}
}

func (s *approvalService) Submit(ctx context.Context, requester, employeeID string, origin domain.RequesterRole, packages []domain.PackageItem) (*domain.PackageRequest, error) {
	if len(packages) == 0 {
		return nil, ErrEmptyPackageList
	}
	for _, pkg := range packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return nil, ErrPackageNameRequired
		}
	}

	req := &domain.PackageRequest{
		ID:                  uuid.NewString(),
		Packages:            packages,
		FirstApprovalStatus: domain.ApprovalStatusPending,
		FinalApprovalStatus: domain.ApprovalStatusPending,
		Requester:           requester,
		EmployeeID:          employeeID,
		RequesterRole:       origin,
		RequestDate:         time.Now(),
	}
	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to store package request: %w", err)
	}

	queue := s.router.FirstApproverFor(origin)
	notif := &domain.Notification{
		ID:            uuid.NewString(),
		Type:          s.router.SubmitNotificationType(origin),
		Title:         "Package request received",
		Message:       fmt.Sprintf("%s submitted a request for %d package(s)", requester, len(packages)),
		RequestID:     req.ID,
		RecipientRole: queue,
		Timestamp:     time.Now(),
	}
	if err := s.noteRepo.Create(ctx, notif); err != nil {
		logger.Error("Failed to create submission notification", "requestID", req.ID, "error", err)
	}

	// Best-effort email to everyone working the first-line queue.
	if approvers, err := s.userRepo.ListByRole(ctx, queue); err == nil {
		for _, approver := range approvers {
			_ = s.emailSvc.SendApprovalRequestNotice(ctx, approver.Email, approver.Name, requester, len(packages))
		}
	}

	return req, nil
}

func (s *approvalService) ApproveFirst(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	committed, err := s.reqRepo.SetFirstApproval(ctx, requestID, domain.ApprovalStatusApproved, &now, "")
	if err != nil {
		return nil, fmt.Errorf("failed to update first approval: %w", err)
	}
	if !committed {
		return nil, ErrNotAwaitingApproval
	}
	req.FirstApprovalStatus = domain.ApprovalStatusApproved
	req.FirstApprovedDate = &now

	notif := &domain.Notification{
		ID:            uuid.NewString(),
		Type:          domain.NotificationTypeFirstApproval,
		Title:         "Package request passed first approval",
		Message:       fmt.Sprintf("The request for %s passed first-line approval", packageNames(req.Packages)),
		RequestID:     req.ID,
		RecipientRole: s.router.FinalApproverFor(req.RequesterRole),
		Timestamp:     time.Now(),
	}
	if err := s.noteRepo.Create(ctx, notif); err != nil {
		logger.Error("Failed to create first-approval notification", "requestID", req.ID, "error", err)
	}

	return req, nil
}

func (s *approvalService) RejectFirst(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	committed, err := s.reqRepo.SetFirstApproval(ctx, requestID, domain.ApprovalStatusRejected, nil, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to update first approval: %w", err)
	}
	if !committed {
		return nil, ErrNotAwaitingApproval
	}
	req.FirstApprovalStatus = domain.ApprovalStatusRejected
	req.FirstRejectionReason = reason

	// First-line rejection is terminal; the final approver has nothing to
	// act on and no further notification is sent.
	return req, nil
}

func (s *approvalService) ApproveFinal(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	committed, err := s.reqRepo.SetFinalApproval(ctx, requestID, domain.ApprovalStatusApproved, &now, "")
	if err != nil {
		return nil, fmt.Errorf("failed to update final approval: %w", err)
	}
	if !committed {
		return nil, ErrNotAwaitingApproval
	}
	req.FinalApprovalStatus = domain.ApprovalStatusApproved
	req.FinalApprovedDate = &now

	// Tagged final_approval so the requester's notification view can open
	// the request detail.
	notif := &domain.Notification{
		ID:          uuid.NewString(),
		Type:        domain.NotificationTypeFinalApproval,
		Title:       "Package request approved",
		Message:     fmt.Sprintf("Your request for %s has been fully approved", packageNames(req.Packages)),
		RequestID:   req.ID,
		RecipientID: req.EmployeeID,
		Timestamp:   time.Now(),
	}
	if err := s.noteRepo.Create(ctx, notif); err != nil {
		logger.Error("Failed to create final-approval notification", "requestID", req.ID, "error", err)
	}

	if requester, err := s.userRepo.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
		_ = s.emailSvc.SendDecisionNotice(ctx, requester.Email, requester.Name, "APPROVED", "")
	}

	return req, nil
}

func (s *approvalService) RejectFinal(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	committed, err := s.reqRepo.SetFinalApproval(ctx, requestID, domain.ApprovalStatusRejected, nil, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to update final approval: %w", err)
	}
	if !committed {
		return nil, ErrNotAwaitingApproval
	}
	req.FinalApprovalStatus = domain.ApprovalStatusRejected
	req.FinalRejectionReason = reason

	if requester, err := s.userRepo.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
		_ = s.emailSvc.SendDecisionNotice(ctx, requester.Email, requester.Name, "REJECTED", reason)
	}

	return req, nil
}

func (s *approvalService) GetRequest(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	return s.reqRepo.GetByID(ctx, requestID)
}

func (s *approvalService) ListAll(ctx context.Context) ([]domain.PackageRequest, error) {
	return s.reqRepo.List(ctx)
}

// ListForRole returns the requests currently sitting in a session role's
// approval queue. Team leaders see employee-origin requests; department
// heads (and admins, who share that queue) see team-leader-origin
// requests plus employee-origin requests that already passed first-line
// approval.
func (s *approvalService) ListForRole(ctx context.Context, role domain.SessionRole) ([]domain.PackageRequest, error) {
	switch s.router.QueueRoleFor(role) {
	case domain.SessionRoleLeader:
		return s.reqRepo.ListByRequesterRole(ctx, domain.RequesterRoleEmployee)
	case domain.SessionRoleHead:
		leaderOrigin, err := s.reqRepo.ListByRequesterRole(ctx, domain.RequesterRoleTeamLeader)
		if err != nil {
			return nil, err
		}
		employeeOrigin, err := s.reqRepo.ListByRequesterRole(ctx, domain.RequesterRoleEmployee)
		if err != nil {
			return nil, err
		}
		queue := leaderOrigin
		for _, req := range employeeOrigin {
			if req.FirstApprovalStatus == domain.ApprovalStatusApproved {
				queue = append(queue, req)
			}
		}
		return queue, nil
	default:
		return nil, ErrNoApprovalAccess
	}
}

func (s *approvalService) ListForEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error) {
	return s.reqRepo.ListByEmployee(ctx, employeeID)
}

func packageNames(packages []domain.PackageItem) string {
	names := make([]string, 0, len(packages))
	for _, pkg := range packages {
		names = append(names, pkg.Name)
	}
	return strings.Join(names, ", ")
}
