package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

type provisionTaskRepository struct {
	db *sql.DB
}

func NewProvisionTaskRepository(db *sql.DB) repository.ProvisionTaskRepository {
	return &provisionTaskRepository{db: db}
}

const taskColumns = `id, vm_id, state, stage, message, created_on, updated_on`

func (r *provisionTaskRepository) Create(ctx context.Context, task *domain.ProvisionTask) error {
	query := `INSERT INTO provision_tasks (` + taskColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.VMID, task.State, task.Stage, task.Message, task.CreatedOn, task.UpdatedOn)
	return err
}

func (r *provisionTaskRepository) GetByID(ctx context.Context, id string) (*domain.ProvisionTask, error) {
	query := `SELECT ` + taskColumns + ` FROM provision_tasks WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *provisionTaskRepository) GetByVM(ctx context.Context, vmID string) (*domain.ProvisionTask, error) {
	query := `SELECT ` + taskColumns + ` FROM provision_tasks WHERE vm_id = $1 ORDER BY created_on DESC LIMIT 1`
	return r.getOne(ctx, query, vmID)
}

// ClaimNextQueued uses a conditional update so that concurrent workers
// never run the same task.
func (r *provisionTaskRepository) ClaimNextQueued(ctx context.Context) (*domain.ProvisionTask, error) {
	query := `UPDATE provision_tasks SET state = 'running', updated_on = $1
	          WHERE id = (
	              SELECT id FROM provision_tasks WHERE state = 'queued'
	              ORDER BY created_on LIMIT 1 FOR UPDATE SKIP LOCKED
	          )
	          RETURNING ` + taskColumns
	task := &domain.ProvisionTask{}
	err := r.db.QueryRowContext(ctx, query, time.Now()).Scan(
		&task.ID, &task.VMID, &task.State, &task.Stage, &task.Message, &task.CreatedOn, &task.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *provisionTaskRepository) UpdateStage(ctx context.Context, id, stage string) error {
	query := `UPDATE provision_tasks SET stage = $1, updated_on = $2 WHERE id = $3 AND state = 'running'`
	_, err := r.db.ExecContext(ctx, query, stage, time.Now(), id)
	return err
}

func (r *provisionTaskRepository) Complete(ctx context.Context, id string, state domain.TaskState, message string) error {
	query := `UPDATE provision_tasks SET state = $1, message = $2, updated_on = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, state, message, time.Now(), id)
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

func (r *provisionTaskRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM provision_tasks
	          WHERE state IN ('succeeded', 'failed') AND updated_on < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *provisionTaskRepository) getOne(ctx context.Context, query string, arg any) (*domain.ProvisionTask, error) {
	task := &domain.ProvisionTask{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&task.ID, &task.VMID, &task.State, &task.Stage, &task.Message, &task.CreatedOn, &task.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}
