package provision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

// Stages a task passes through while the VM is being prepared. Consumers
// polling the task see the current stage instead of a fake percentage.
var stages = []string{
	"allocating resources",
	"installing operating system",
	"configuring network",
	"finalizing",
}

// Worker drains the provisioning queue. Each claimed task walks the
// stages with a fixed dwell time, then succeeds and notifies the owner.
type Worker struct {
	taskRepo   repository.ProvisionTaskRepository
	vmRepo     repository.VMRepository
	noteRepo   repository.NotificationRepository
	workers    int
	stageDelay time.Duration
	poll       time.Duration

	wg sync.WaitGroup
}

func NewWorker(
	taskRepo repository.ProvisionTaskRepository,
	vmRepo repository.VMRepository,
	noteRepo repository.NotificationRepository,
	workers int,
	stageDelay, poll time.Duration,
) *Worker {
	return &Worker{
		taskRepo:   taskRepo,
		vmRepo:     vmRepo,
		noteRepo:   noteRepo,
		workers:    workers,
		stageDelay: stageDelay,
		poll:       poll,
	}
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.loop(ctx, id)
		}(i)
	}
}

// Wait blocks until all workers have exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) {
	logger.Info("Provisioning worker started", "worker", id)
	for {
		task, err := w.taskRepo.ClaimNextQueued(ctx)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Error("Failed to claim provisioning task", "worker", id, "error", err)
			}
			select {
			case <-ctx.Done():
				logger.Info("Provisioning worker stopping", "worker", id)
				return
			case <-time.After(w.poll):
			}
			continue
		}
		w.run(ctx, task)
	}
}

func (w *Worker) run(ctx context.Context, task *domain.ProvisionTask) {
	logger.Info("Provisioning VM", "taskID", task.ID, "vmID", task.VMID)

	for _, stage := range stages {
		if err := w.taskRepo.UpdateStage(ctx, task.ID, stage); err != nil {
			w.fail(task, fmt.Sprintf("failed to record stage %q: %v", stage, err))
			return
		}
		select {
		case <-ctx.Done():
			// Shutdown mid-provision: mark failed so the task is not
			// stranded in running forever.
			w.fail(task, "provisioning interrupted by shutdown")
			return
		case <-time.After(w.stageDelay):
		}
	}

	if err := w.taskRepo.Complete(ctx, task.ID, domain.TaskStateSucceeded, ""); err != nil {
		logger.Error("Failed to complete provisioning task", "taskID", task.ID, "error", err)
		return
	}
	logger.Info("VM provisioned", "taskID", task.ID, "vmID", task.VMID)

	vm, err := w.vmRepo.GetByID(context.Background(), task.VMID)
	if err != nil {
		logger.Error("Provisioned VM not found for notification", "vmID", task.VMID, "error", err)
		return
	}
	notif := &domain.Notification{
		ID:          uuid.NewString(),
		Type:        domain.NotificationTypeVMReady,
		Title:       "VM ready",
		Message:     fmt.Sprintf("VM %s has been provisioned and is ready for use", vm.Name),
		RecipientID: vm.OwnerID,
		Timestamp:   time.Now(),
	}
	if err := w.noteRepo.Create(context.Background(), notif); err != nil {
		logger.Error("Failed to create VM-ready notification", "vmID", vm.ID, "error", err)
	}
}

func (w *Worker) fail(task *domain.ProvisionTask, message string) {
	// Use a fresh context: the worker context may already be cancelled.
	if err := w.taskRepo.Complete(context.Background(), task.ID, domain.TaskStateFailed, message); err != nil {
		logger.Error("Failed to mark provisioning task failed", "taskID", task.ID, "error", err)
	}
}
