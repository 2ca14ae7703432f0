package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

type vmRepository struct {
	db *sql.DB
}

func NewVMRepository(db *sql.DB) repository.VMRepository {
	return &vmRepository{db: db}
}

const vmColumns = `id, name, type, cpu, memory_gb, storage_gb, os, count, assigned_team, assignments, owner_id, created_on`

func (r *vmRepository) Create(ctx context.Context, vm *domain.VirtualMachine) error {
	assignments, err := json.Marshal(vm.Assignments)
	if err != nil {
		return err
	}
	query := `INSERT INTO virtual_machines (` + vmColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		vm.ID, vm.Name, vm.Type, vm.CPU, vm.MemoryGB, vm.StorageGB, vm.OS, vm.Count,
		vm.AssignedTeam, assignments, vm.OwnerID, vm.CreatedOn)
	return err
}

func (r *vmRepository) GetByID(ctx context.Context, id string) (*domain.VirtualMachine, error) {
	query := `SELECT ` + vmColumns + ` FROM virtual_machines WHERE id = ?`
	vm, err := scanVM(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return vm, err
}

func (r *vmRepository) List(ctx context.Context) ([]domain.VirtualMachine, error) {
	query := `SELECT ` + vmColumns + ` FROM virtual_machines ORDER BY created_on DESC`
	return r.queryVMs(ctx, query)
}

func (r *vmRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.VirtualMachine, error) {
	query := `SELECT ` + vmColumns + ` FROM virtual_machines WHERE owner_id = ? ORDER BY created_on DESC`
	return r.queryVMs(ctx, query, ownerID)
}

func (r *vmRepository) UpdateAssignments(ctx context.Context, id string, assignments map[int32]string) error {
	data, err := json.Marshal(assignments)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE virtual_machines SET assignments = ? WHERE id = ?`, data, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *vmRepository) queryVMs(ctx context.Context, query string, args ...any) ([]domain.VirtualMachine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vms []domain.VirtualMachine
	for rows.Next() {
		vm, err := scanVM(rows)
		if err != nil {
			return nil, err
		}
		vms = append(vms, *vm)
	}
	return vms, rows.Err()
}

func scanVM(row rowScanner) (*domain.VirtualMachine, error) {
	vm := &domain.VirtualMachine{}
	var assignments []byte
	err := row.Scan(&vm.ID, &vm.Name, &vm.Type, &vm.CPU, &vm.MemoryGB, &vm.StorageGB, &vm.OS, &vm.Count,
		&vm.AssignedTeam, &assignments, &vm.OwnerID, &vm.CreatedOn)
	if err != nil {
		return nil, err
	}
	if len(assignments) > 0 {
		if err := json.Unmarshal(assignments, &vm.Assignments); err != nil {
			logger.Warn("Discarding malformed assignment payload", "vmID", vm.ID, "error", err)
			vm.Assignments = nil
		}
	}
	return vm, nil
}
