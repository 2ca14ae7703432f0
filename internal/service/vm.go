package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

// VMSpec is the requested shape of a virtual machine.
type VMSpec struct {
	Name         string        `json:"name"`
	Type         domain.VMType `json:"type"`
	CPU          int32         `json:"cpu"`
	MemoryGB     int32         `json:"memory_gb"`
	StorageGB    int32         `json:"storage_gb"`
	OS           string        `json:"os"`
	Count        int32         `json:"count"`
	AssignedTeam string        `json:"assigned_team"`
}

// FieldErrors reports validation failures per field so callers can render
// them inline next to the offending input.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

const (
	maxMemoryGB  = 32
	maxStorageGB = 500
	// CPU counts above this require at least 16 GB of memory.
	highCPUThreshold = 8
)

var ErrNoInstallTargets = errors.New("at least one package and one target VM are required")

type vmService struct {
	vmRepo   repository.VMRepository
	taskRepo repository.ProvisionTaskRepository
	pkgRepo  repository.InstalledPackageRepository
	userRepo repository.UserRepository
}

func NewVMService(
	vmRepo repository.VMRepository,
	taskRepo repository.ProvisionTaskRepository,
	pkgRepo repository.InstalledPackageRepository,
	userRepo repository.UserRepository,
) VMService {
	return &vmService{
		vmRepo:   vmRepo,
		taskRepo: taskRepo,
		pkgRepo:  pkgRepo,
		userRepo: userRepo,
	}
}

func (s *vmService) CreateVM(ctx context.Context, ownerID string, spec VMSpec) (*domain.VirtualMachine, *domain.ProvisionTask, error) {
	if err := validateSpec(spec); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	vm := &domain.VirtualMachine{
		ID:           uuid.NewString(),
		Name:         spec.Name,
		Type:         spec.Type,
		CPU:          spec.CPU,
		MemoryGB:     spec.MemoryGB,
		StorageGB:    spec.StorageGB,
		OS:           spec.OS,
		Count:        spec.Count,
		AssignedTeam: spec.AssignedTeam,
		OwnerID:      ownerID,
		CreatedOn:    now,
	}
	if err := s.vmRepo.Create(ctx, vm); err != nil {
		return nil, nil, fmt.Errorf("failed to store VM: %w", err)
	}

	task := &domain.ProvisionTask{
		ID:        uuid.NewString(),
		VMID:      vm.ID,
		State:     domain.TaskStateQueued,
		CreatedOn: now,
		UpdatedOn: now,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, nil, fmt.Errorf("failed to enqueue provisioning: %w", err)
	}

	return vm, task, nil
}

func validateSpec(spec VMSpec) error {
	errs := FieldErrors{}
	if strings.TrimSpace(spec.Name) == "" {
		errs["name"] = "VM name is required"
	}
	if spec.CPU <= 0 {
		errs["cpu"] = "CPU count is required"
	}
	if spec.MemoryGB <= 0 {
		errs["memory"] = "memory size is required"
	}
	if spec.StorageGB <= 0 {
		errs["storage"] = "storage size is required"
	}
	if spec.OS == "" {
		errs["os"] = "operating system is required"
	}
	if spec.MemoryGB > maxMemoryGB {
		errs["memory"] = fmt.Sprintf("insufficient server memory, at most %d GB can be selected", maxMemoryGB)
	}
	if spec.CPU > highCPUThreshold && spec.MemoryGB < 16 {
		errs["cpu"] = "CPU to memory ratio is not appropriate"
	}
	if spec.StorageGB > maxStorageGB {
		errs["storage"] = fmt.Sprintf("storage size exceeds the limit, at most %d GB is allowed", maxStorageGB)
	}
	if spec.Count <= 0 {
		errs["count"] = "instance count is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *vmService) GetVM(ctx context.Context, vmID string) (*domain.VirtualMachine, error) {
	return s.vmRepo.GetByID(ctx, vmID)
}

func (s *vmService) ListVMs(ctx context.Context) ([]domain.VirtualMachine, error) {
	return s.vmRepo.List(ctx)
}

func (s *vmService) GetTask(ctx context.Context, vmID string) (*domain.ProvisionTask, error) {
	return s.taskRepo.GetByVM(ctx, vmID)
}

// AssignMembers records one assignee per VM instance. Every instance must
// be assigned, and every assignee must belong to the VM's team.
func (s *vmService) AssignMembers(ctx context.Context, vmID string, assignments map[int32]string) (*domain.VirtualMachine, error) {
	vm, err := s.vmRepo.GetByID(ctx, vmID)
	if err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	for i := int32(0); i < vm.Count; i++ {
		if assignments[i] == "" {
			errs[fmt.Sprintf("instance_%d", i)] = "an assignee is required"
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	members, err := s.userRepo.ListByTeam(ctx, vm.AssignedTeam)
	if err != nil {
		return nil, err
	}
	inTeam := make(map[string]bool, len(members))
	for _, m := range members {
		inTeam[m.EmployeeID] = true
	}
	for idx, employeeID := range assignments {
		if !inTeam[employeeID] {
			errs[fmt.Sprintf("instance_%d", idx)] = fmt.Sprintf("employee %s is not in team %s", employeeID, vm.AssignedTeam)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.vmRepo.UpdateAssignments(ctx, vmID, assignments); err != nil {
		return nil, err
	}
	vm.Assignments = assignments
	return vm, nil
}

func (s *vmService) InstallPackages(ctx context.Context, vmIDs []string, packages []domain.PackageItem) ([]domain.InstalledPackage, error) {
	if len(vmIDs) == 0 || len(packages) == 0 {
		return nil, ErrNoInstallTargets
	}
	for _, pkg := range packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return nil, ErrPackageNameRequired
		}
	}

	now := time.Now()
	var installed []domain.InstalledPackage
	for _, vmID := range vmIDs {
		if _, err := s.vmRepo.GetByID(ctx, vmID); err != nil {
			return nil, fmt.Errorf("unknown VM %s: %w", vmID, err)
		}
		for _, pkg := range packages {
			installed = append(installed, domain.InstalledPackage{
				ID:          uuid.NewString(),
				VMID:        vmID,
				Name:        pkg.Name,
				Version:     pkg.Version,
				InstalledOn: now,
			})
		}
	}
	if err := s.pkgRepo.CreateBatch(ctx, installed); err != nil {
		return nil, fmt.Errorf("failed to record installed packages: %w", err)
	}
	return installed, nil
}

func (s *vmService) ListInstalledPackages(ctx context.Context) ([]domain.InstalledPackage, error) {
	return s.pkgRepo.List(ctx)
}

// Presets are the previously-used specs offered as one-click starting
// points on the create form.
func (s *vmService) Presets() []VMSpec {
	return []VMSpec{
		{Name: "web-server-01", Type: domain.VMTypePrivate, CPU: 2, MemoryGB: 4, StorageGB: 50, OS: "ubuntu-22", Count: 1},
		{Name: "db-server-01", Type: domain.VMTypePrivate, CPU: 4, MemoryGB: 8, StorageGB: 100, OS: "ubuntu-22", Count: 1},
		{Name: "api-server-02", Type: domain.VMTypePrivate, CPU: 2, MemoryGB: 4, StorageGB: 30, OS: "centos-8", Count: 1},
	}
}
