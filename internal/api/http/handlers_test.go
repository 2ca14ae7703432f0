package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	api "cloudpilot-backend/internal/api/http"
	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/metrics"
	"cloudpilot-backend/internal/repository"
	"cloudpilot-backend/internal/security"
	"cloudpilot-backend/internal/service"
)

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, employeeID, password string) (string, *domain.User, error) {
	args := m.Called(ctx, employeeID, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}
func (m *MockAuthService) RequestPasswordReset(ctx context.Context, employeeID, email string) error {
	args := m.Called(ctx, employeeID, email)
	return args.Error(0)
}

// MockApprovalService
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) Submit(ctx context.Context, requester, employeeID string, origin domain.RequesterRole, packages []domain.PackageItem) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requester, employeeID, origin, packages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) ApproveFirst(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) RejectFirst(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requestID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) ApproveFinal(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) RejectFinal(ctx context.Context, requestID, reason string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requestID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) GetRequest(ctx context.Context, requestID string) (*domain.PackageRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) ListAll(ctx context.Context) ([]domain.PackageRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) ListForRole(ctx context.Context, role domain.SessionRole) ([]domain.PackageRequest, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}
func (m *MockApprovalService) ListForEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).([]domain.PackageRequest), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error) {
	args := m.Called(ctx, role, employeeID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}
func (m *MockNotificationService) CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error) {
	args := m.Called(ctx, role, employeeID)
	return args.Get(0).(int32), args.Error(1)
}

// MockVMService
type MockVMService struct {
	mock.Mock
}

func (m *MockVMService) CreateVM(ctx context.Context, ownerID string, spec service.VMSpec) (*domain.VirtualMachine, *domain.ProvisionTask, error) {
	args := m.Called(ctx, ownerID, spec)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.VirtualMachine), args.Get(1).(*domain.ProvisionTask), args.Error(2)
}
func (m *MockVMService) GetVM(ctx context.Context, vmID string) (*domain.VirtualMachine, error) {
	args := m.Called(ctx, vmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VirtualMachine), args.Error(1)
}
func (m *MockVMService) ListVMs(ctx context.Context) ([]domain.VirtualMachine, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.VirtualMachine), args.Error(1)
}
func (m *MockVMService) GetTask(ctx context.Context, vmID string) (*domain.ProvisionTask, error) {
	args := m.Called(ctx, vmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisionTask), args.Error(1)
}
func (m *MockVMService) AssignMembers(ctx context.Context, vmID string, assignments map[int32]string) (*domain.VirtualMachine, error) {
	args := m.Called(ctx, vmID, assignments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VirtualMachine), args.Error(1)
}
func (m *MockVMService) InstallPackages(ctx context.Context, vmIDs []string, packages []domain.PackageItem) ([]domain.InstalledPackage, error) {
	args := m.Called(ctx, vmIDs, packages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstalledPackage), args.Error(1)
}
func (m *MockVMService) ListInstalledPackages(ctx context.Context) ([]domain.InstalledPackage, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InstalledPackage), args.Error(1)
}
func (m *MockVMService) Presets() []service.VMSpec {
	args := m.Called()
	return args.Get(0).([]service.VMSpec)
}

type fixture struct {
	authSvc     *MockAuthService
	approvalSvc *MockApprovalService
	noteSvc     *MockNotificationService
	vmSvc       *MockVMService
	tokens      security.TokenManager
	handler     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		authSvc:     new(MockAuthService),
		approvalSvc: new(MockApprovalService),
		noteSvc:     new(MockNotificationService),
		vmSvc:       new(MockVMService),
		tokens:      security.NewTokenManager("handler-test-secret-0123456789abcdef", 60),
	}
	f.handler = api.NewRouter(api.RouterDeps{
		AuthService:         f.authSvc,
		ApprovalService:     f.approvalSvc,
		NotificationService: f.noteSvc,
		VMService:           f.vmSvc,
		MetricsClient:       metrics.NewClient(0, 0, 0),
		RoleRouter:          service.NewRoleRouter(),
		TokenManager:        f.tokens,
	})
	return f
}

func (f *fixture) tokenFor(t *testing.T, employeeID, name string, role domain.SessionRole) string {
	t.Helper()
	token, err := f.tokens.GenerateSessionToken(employeeID, name, role)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	f := newFixture(t)
	user := &domain.User{EmployeeID: "admin", Name: "Portal Admin", Role: domain.SessionRoleAdmin}
	f.authSvc.On("Login", mock.Anything, "admin", "admin123").Return("tok", user, nil)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"employee_id": "admin", "password": "admin123"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token       string `json:"token"`
		LandingPage string `json:"landing_page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "/admin", resp.LandingPage)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	f := newFixture(t)
	f.authSvc.On("Login", mock.Anything, "admin", "nope").Return("", nil, service.ErrInvalidCredentials)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"employee_id": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/requests", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFirstApprovalEndpoint(t *testing.T) {
	t.Run("Leader can approve", func(t *testing.T) {
		f := newFixture(t)
		f.approvalSvc.On("ApproveFirst", mock.Anything, "req-1").
			Return(&domain.PackageRequest{ID: "req-1", FirstApprovalStatus: domain.ApprovalStatusApproved}, nil)

		token := f.tokenFor(t, "leader-01", "Marcus", domain.SessionRoleLeader)
		rec := f.do(t, http.MethodPost, "/api/requests/req-1/first-approval", token,
			map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Member is forbidden", func(t *testing.T) {
		f := newFixture(t)
		token := f.tokenFor(t, "member-01", "Priya", domain.SessionRoleMember)
		rec := f.do(t, http.MethodPost, "/api/requests/req-1/first-approval", token,
			map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Concurrent decision maps to conflict", func(t *testing.T) {
		f := newFixture(t)
		f.approvalSvc.On("ApproveFirst", mock.Anything, "req-1").
			Return(nil, service.ErrNotAwaitingApproval)

		token := f.tokenFor(t, "leader-01", "Marcus", domain.SessionRoleLeader)
		rec := f.do(t, http.MethodPost, "/api/requests/req-1/first-approval", token,
			map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Missing rejection reason is a bad request", func(t *testing.T) {
		f := newFixture(t)
		f.approvalSvc.On("RejectFirst", mock.Anything, "req-1", "").
			Return(nil, service.ErrReasonRequired)

		token := f.tokenFor(t, "leader-01", "Marcus", domain.SessionRoleLeader)
		rec := f.do(t, http.MethodPost, "/api/requests/req-1/first-approval", token,
			map[string]string{"action": "reject"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown action", func(t *testing.T) {
		f := newFixture(t)
		token := f.tokenFor(t, "leader-01", "Marcus", domain.SessionRoleLeader)
		rec := f.do(t, http.MethodPost, "/api/requests/req-1/first-approval", token,
			map[string]string{"action": "escalate"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFinalApprovalEndpoint_LeaderForbidden(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, "leader-01", "Marcus", domain.SessionRoleLeader)
	rec := f.do(t, http.MethodPost, "/api/requests/req-1/final-approval", token,
		map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitEndpoint(t *testing.T) {
	f := newFixture(t)
	f.approvalSvc.On("Submit", mock.Anything, "Priya", "member-01", domain.RequesterRoleEmployee,
		[]domain.PackageItem{{Name: "nginx"}}).
		Return(&domain.PackageRequest{ID: "req-1"}, nil)

	token := f.tokenFor(t, "member-01", "Priya", domain.SessionRoleMember)
	rec := f.do(t, http.MethodPost, "/api/requests", token,
		map[string]any{"packages": []map[string]string{{"name": "nginx"}}})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVMCreateEndpoint_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.vmSvc.On("CreateVM", mock.Anything, "member-01", mock.Anything).
		Return(nil, nil, service.FieldErrors{"memory": "insufficient server memory, at most 32 GB can be selected"})

	token := f.tokenFor(t, "member-01", "Priya", domain.SessionRoleMember)
	rec := f.do(t, http.MethodPost, "/api/vms", token,
		map[string]any{"name": "big", "cpu": 2, "memory_gb": 64, "storage_gb": 50, "os": "ubuntu-22", "count": 1})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "memory")
}

func TestNotificationEndpoints(t *testing.T) {
	t.Run("Mark unknown notification as read", func(t *testing.T) {
		f := newFixture(t)
		f.noteSvc.On("MarkAsRead", mock.Anything, "missing").Return(repository.ErrNotFound)

		token := f.tokenFor(t, "member-01", "Priya", domain.SessionRoleMember)
		rec := f.do(t, http.MethodPost, "/api/notifications/missing/read", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Unread count", func(t *testing.T) {
		f := newFixture(t)
		f.noteSvc.On("CountUnread", mock.Anything, domain.SessionRoleMember, "member-01").Return(int32(2), nil)

		token := f.tokenFor(t, "member-01", "Priya", domain.SessionRoleMember)
		rec := f.do(t, http.MethodGet, "/api/notifications/unread-count", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"unread":2}`, rec.Body.String())
	})
}

func TestLandingEndpoint(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, "head-01", "Dana", domain.SessionRoleHead)

	rec := f.do(t, http.MethodGet, "/api/roles/landing", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"landing_page":"/","approval_screen":"/head-approval"}`, rec.Body.String())
}
