package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/security"
)

// MockPackageRequestRepo
type MockPackageRequestRepo struct {
	mock.Mock
}

func (m *MockPackageRequestRepo) Create(ctx context.Context, req *domain.PackageRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockPackageRequestRepo) GetByID(ctx context.Context, id string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockPackageRequestRepo) List(ctx context.Context) ([]domain.PackageRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockPackageRequestRepo) ListByRequesterRole(ctx context.Context, role domain.RequesterRole) ([]domain.PackageRequest, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockPackageRequestRepo) ListByEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockPackageRequestRepo) ListFirstPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.PackageRequest, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockPackageRequestRepo) SetFirstApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error) {
	args := m.Called(ctx, id, status, approvedDate, rejectionReason)
	return args.Bool(0), args.Error(1)
}
func (m *MockPackageRequestRepo) SetFinalApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error) {
	args := m.Called(ctx, id, status, approvedDate, rejectionReason)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) ListForRecipient(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error) {
	args := m.Called(ctx, role, employeeID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error) {
	args := m.Called(ctx, role, employeeID)
	return args.Get(0).(int32), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.SessionRole) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) ListByTeam(ctx context.Context, team string) ([]domain.User, error) {
	args := m.Called(ctx, team)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockVMRepo
type MockVMRepo struct {
	mock.Mock
}

func (m *MockVMRepo) Create(ctx context.Context, vm *domain.VirtualMachine) error {
	args := m.Called(ctx, vm)
	return args.Error(0)
}
func (m *MockVMRepo) GetByID(ctx context.Context, id string) (*domain.VirtualMachine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VirtualMachine), args.Error(1)
}
func (m *MockVMRepo) List(ctx context.Context) ([]domain.VirtualMachine, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.VirtualMachine), args.Error(1)
}
func (m *MockVMRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.VirtualMachine, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.VirtualMachine), args.Error(1)
}
func (m *MockVMRepo) UpdateAssignments(ctx context.Context, id string, assignments map[int32]string) error {
	args := m.Called(ctx, id, assignments)
	return args.Error(0)
}

// MockProvisionTaskRepo
type MockProvisionTaskRepo struct {
	mock.Mock
}

func (m *MockProvisionTaskRepo) Create(ctx context.Context, task *domain.ProvisionTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}
func (m *MockProvisionTaskRepo) GetByID(ctx context.Context, id string) (*domain.ProvisionTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisionTask), args.Error(1)
}
func (m *MockProvisionTaskRepo) GetByVM(ctx context.Context, vmID string) (*domain.ProvisionTask, error) {
	args := m.Called(ctx, vmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisionTask), args.Error(1)
}
func (m *MockProvisionTaskRepo) ClaimNextQueued(ctx context.Context) (*domain.ProvisionTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisionTask), args.Error(1)
}
func (m *MockProvisionTaskRepo) UpdateStage(ctx context.Context, id, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}
func (m *MockProvisionTaskRepo) Complete(ctx context.Context, id string, state domain.TaskState, message string) error {
	args := m.Called(ctx, id, state, message)
	return args.Error(0)
}
func (m *MockProvisionTaskRepo) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockInstalledPackageRepo
type MockInstalledPackageRepo struct {
	mock.Mock
}

func (m *MockInstalledPackageRepo) CreateBatch(ctx context.Context, pkgs []domain.InstalledPackage) error {
	args := m.Called(ctx, pkgs)
	return args.Error(0)
}
func (m *MockInstalledPackageRepo) List(ctx context.Context) ([]domain.InstalledPackage, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InstalledPackage), args.Error(1)
}
func (m *MockInstalledPackageRepo) ListByVM(ctx context.Context, vmID string) ([]domain.InstalledPackage, error) {
	args := m.Called(ctx, vmID)
	return args.Get(0).([]domain.InstalledPackage), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendApprovalRequestNotice(ctx context.Context, email, name, requester string, packageCount int) error {
	args := m.Called(ctx, email, name, requester, packageCount)
	return args.Error(0)
}
func (m *MockEmailService) SendDecisionNotice(ctx context.Context, email, name, decision, reason string) error {
	args := m.Called(ctx, email, name, decision, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPasswordResetNotice(ctx context.Context, email, employeeID string) error {
	args := m.Called(ctx, email, employeeID)
	return args.Error(0)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateSessionToken(employeeID, name string, role domain.SessionRole) (string, error) {
	args := m.Called(employeeID, name, role)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(tokenString string) (*security.SessionClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.SessionClaims), args.Error(1)
}
