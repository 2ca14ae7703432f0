package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

func newVMFixture() (*MockVMRepo, *MockProvisionTaskRepo, *MockInstalledPackageRepo, *MockUserRepo, service.VMService) {
	vmRepo := new(MockVMRepo)
	taskRepo := new(MockProvisionTaskRepo)
	pkgRepo := new(MockInstalledPackageRepo)
	userRepo := new(MockUserRepo)
	svc := service.NewVMService(vmRepo, taskRepo, pkgRepo, userRepo)
	return vmRepo, taskRepo, pkgRepo, userRepo, svc
}

func validSpec() service.VMSpec {
	return service.VMSpec{
		Name:         "web-server-03",
		Type:         domain.VMTypePrivate,
		CPU:          2,
		MemoryGB:     4,
		StorageGB:    50,
		OS:           "ubuntu-22",
		Count:        2,
		AssignedTeam: "platform",
	}
}

func TestVMService_CreateVM(t *testing.T) {
	ctx := context.Background()

	t.Run("Success enqueues a provisioning task", func(t *testing.T) {
		vmRepo, taskRepo, _, _, svc := newVMFixture()

		vmRepo.On("Create", ctx, mock.AnythingOfType("*domain.VirtualMachine")).Return(nil)
		taskRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.ProvisionTask) bool {
			return task.State == domain.TaskStateQueued && task.VMID != ""
		})).Return(nil)

		vm, task, err := svc.CreateVM(ctx, "member-01", validSpec())
		require.NoError(t, err)
		assert.Equal(t, "member-01", vm.OwnerID)
		assert.Equal(t, vm.ID, task.VMID)
		assert.Equal(t, domain.TaskStateQueued, task.State)
		taskRepo.AssertExpectations(t)
	})

	t.Run("Validation failures are reported per field", func(t *testing.T) {
		_, _, _, _, svc := newVMFixture()

		cases := []struct {
			name   string
			mutate func(*service.VMSpec)
			field  string
		}{
			{"missing name", func(s *service.VMSpec) { s.Name = "  " }, "name"},
			{"memory over limit", func(s *service.VMSpec) { s.MemoryGB = 64 }, "memory"},
			{"storage over limit", func(s *service.VMSpec) { s.StorageGB = 1000 }, "storage"},
			{"high cpu low memory", func(s *service.VMSpec) { s.CPU = 16; s.MemoryGB = 8 }, "cpu"},
			{"missing os", func(s *service.VMSpec) { s.OS = "" }, "os"},
			{"zero count", func(s *service.VMSpec) { s.Count = 0 }, "count"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				spec := validSpec()
				tc.mutate(&spec)

				_, _, err := svc.CreateVM(ctx, "member-01", spec)
				require.Error(t, err)
				var fieldErrs service.FieldErrors
				require.ErrorAs(t, err, &fieldErrs)
				assert.Contains(t, fieldErrs, tc.field)
			})
		}
	})

	t.Run("High CPU with enough memory is allowed", func(t *testing.T) {
		vmRepo, taskRepo, _, _, svc := newVMFixture()
		vmRepo.On("Create", ctx, mock.Anything).Return(nil)
		taskRepo.On("Create", ctx, mock.Anything).Return(nil)

		spec := validSpec()
		spec.CPU = 16
		spec.MemoryGB = 16

		_, _, err := svc.CreateVM(ctx, "member-01", spec)
		assert.NoError(t, err)
	})
}

func TestVMService_AssignMembers(t *testing.T) {
	ctx := context.Background()
	vm := &domain.VirtualMachine{
		ID:           "vm-1",
		Name:         "web-server-03",
		Count:        2,
		AssignedTeam: "platform",
	}
	team := []domain.User{
		{EmployeeID: "member-01", Team: "platform"},
		{EmployeeID: "member-02", Team: "platform"},
	}

	t.Run("Success", func(t *testing.T) {
		vmRepo, _, _, userRepo, svc := newVMFixture()
		assignments := map[int32]string{0: "member-01", 1: "member-02"}

		vmRepo.On("GetByID", ctx, "vm-1").Return(vm, nil)
		userRepo.On("ListByTeam", ctx, "platform").Return(team, nil)
		vmRepo.On("UpdateAssignments", ctx, "vm-1", assignments).Return(nil)

		updated, err := svc.AssignMembers(ctx, "vm-1", assignments)
		require.NoError(t, err)
		assert.Equal(t, assignments, updated.Assignments)
	})

	t.Run("Every instance needs an assignee", func(t *testing.T) {
		vmRepo, _, _, _, svc := newVMFixture()
		vmRepo.On("GetByID", ctx, "vm-1").Return(vm, nil)

		_, err := svc.AssignMembers(ctx, "vm-1", map[int32]string{0: "member-01"})
		var fieldErrs service.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "instance_1")
	})

	t.Run("Assignees must be in the VM's team", func(t *testing.T) {
		vmRepo, _, _, userRepo, svc := newVMFixture()
		vmRepo.On("GetByID", ctx, "vm-1").Return(vm, nil)
		userRepo.On("ListByTeam", ctx, "platform").Return(team, nil)

		_, err := svc.AssignMembers(ctx, "vm-1", map[int32]string{0: "member-01", 1: "outsider-09"})
		var fieldErrs service.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "instance_1")
	})
}

func TestVMService_InstallPackages(t *testing.T) {
	ctx := context.Background()
	vm := &domain.VirtualMachine{ID: "vm-1", Name: "web-server-03"}

	t.Run("Success records one row per VM and package", func(t *testing.T) {
		vmRepo, _, pkgRepo, _, svc := newVMFixture()
		vmRepo.On("GetByID", ctx, "vm-1").Return(vm, nil)
		pkgRepo.On("CreateBatch", ctx, mock.MatchedBy(func(pkgs []domain.InstalledPackage) bool {
			return len(pkgs) == 2
		})).Return(nil)

		installed, err := svc.InstallPackages(ctx, []string{"vm-1"},
			[]domain.PackageItem{{Name: "nginx"}, {Name: "redis", Version: "7.2"}})
		require.NoError(t, err)
		assert.Len(t, installed, 2)
		assert.Equal(t, "vm-1", installed[0].VMID)
	})

	t.Run("Needs at least one package and one VM", func(t *testing.T) {
		_, _, _, _, svc := newVMFixture()

		_, err := svc.InstallPackages(ctx, nil, []domain.PackageItem{{Name: "nginx"}})
		assert.ErrorIs(t, err, service.ErrNoInstallTargets)

		_, err = svc.InstallPackages(ctx, []string{"vm-1"}, nil)
		assert.ErrorIs(t, err, service.ErrNoInstallTargets)
	})

	t.Run("Blank package name refused", func(t *testing.T) {
		_, _, _, _, svc := newVMFixture()

		_, err := svc.InstallPackages(ctx, []string{"vm-1"}, []domain.PackageItem{{Name: " "}})
		assert.ErrorIs(t, err, service.ErrPackageNameRequired)
	})
}

func TestVMService_Presets(t *testing.T) {
	_, _, _, _, svc := newVMFixture()

	presets := svc.Presets()
	require.Len(t, presets, 3)
	names := []string{presets[0].Name, presets[1].Name, presets[2].Name}
	assert.Equal(t, []string{"web-server-01", "db-server-01", "api-server-02"}, names)
	// Presets must themselves pass validation.
	for _, preset := range presets {
		assert.NotZero(t, preset.CPU)
		assert.NotZero(t, preset.Count)
	}
}
