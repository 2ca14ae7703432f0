package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

type VMHandler struct {
	vmSvc service.VMService
}

func NewVMHandler(vmSvc service.VMService) *VMHandler {
	return &VMHandler{vmSvc: vmSvc}
}

type createVMResponse struct {
	VM   *domain.VirtualMachine `json:"vm"`
	Task *domain.ProvisionTask  `json:"task"`
}

func (h *VMHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var spec service.VMSpec
	if !decodeJSON(w, r, &spec) {
		return
	}

	vm, task, err := h.vmSvc.CreateVM(r.Context(), claims.EmployeeID, spec)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, createVMResponse{VM: vm, Task: task})
}

func (h *VMHandler) List(w http.ResponseWriter, r *http.Request) {
	vms, err := h.vmSvc.ListVMs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if vms == nil {
		vms = []domain.VirtualMachine{}
	}
	respondJSON(w, http.StatusOK, vms)
}

func (h *VMHandler) Get(w http.ResponseWriter, r *http.Request) {
	vm, err := h.vmSvc.GetVM(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vm)
}

// GetTask reports provisioning progress for a VM. Clients poll this until
// the task reaches a finished state.
func (h *VMHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.vmSvc.GetTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

type assignRequest struct {
	Assignments map[int32]string `json:"assignments"`
}

func (h *VMHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vm, err := h.vmSvc.AssignMembers(r.Context(), mux.Vars(r)["id"], req.Assignments)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vm)
}

type installRequest struct {
	VMIDs    []string             `json:"vm_ids"`
	Packages []domain.PackageItem `json:"packages"`
}

func (h *VMHandler) InstallPackages(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	installed, err := h.vmSvc.InstallPackages(r.Context(), req.VMIDs, req.Packages)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, installed)
}

func (h *VMHandler) ListInstalledPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.vmSvc.ListInstalledPackages(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if pkgs == nil {
		pkgs = []domain.InstalledPackage{}
	}
	respondJSON(w, http.StatusOK, pkgs)
}

func (h *VMHandler) Presets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.vmSvc.Presets())
}
