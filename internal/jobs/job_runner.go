package jobs

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"cloudpilot-backend/internal/config"
	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reqRepo  repository.PackageRequestRepository
	noteRepo repository.NotificationRepository
	taskRepo repository.ProvisionTaskRepository
	config   *config.Config
}

func NewJobRunner(
	reqRepo repository.PackageRequestRepository,
	noteRepo repository.NotificationRepository,
	taskRepo repository.ProvisionTaskRepository,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		reqRepo:  reqRepo,
		noteRepo: noteRepo,
		taskRepo: taskRepo,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// PendingApprovalReminders nudges the first-line queues about requests
// that have been waiting longer than a day.
func (jr *JobRunner) PendingApprovalReminders() {
	jr.runWithRecovery("PendingApprovalReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-24 * time.Hour)
		stale, err := jr.reqRepo.ListFirstPendingBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale pending requests", "error", err)
			return
		}
		for _, req := range stale {
			queue := domain.SessionRoleLeader
			if req.RequesterRole == domain.RequesterRoleTeamLeader {
				queue = domain.SessionRoleHead
			}
			notif := &domain.Notification{
				ID:            uuid.NewString(),
				Type:          domain.NotificationTypeApprovalReminder,
				Title:         "Package request still pending",
				Message:       "A package request from " + req.Requester + " has been waiting since " + humanize.Time(req.RequestDate),
				RequestID:     req.ID,
				RecipientRole: queue,
				Timestamp:     time.Now(),
			}
			if err := jr.noteRepo.Create(ctx, notif); err != nil {
				logger.Error("Failed to create reminder notification", "requestID", req.ID, "error", err)
			}
		}
		logger.Info("Pending approval reminders sent", "count", len(stale))
	})
}

// CleanupFinishedTasks drops provisioning tasks that finished more than a
// week ago.
func (jr *JobRunner) CleanupFinishedTasks() {
	jr.runWithRecovery("CleanupFinishedTasks", func() {
		cutoff := time.Now().Add(-7 * 24 * time.Hour)
		deleted, err := jr.taskRepo.DeleteFinishedBefore(context.Background(), cutoff)
		if err != nil {
			logger.Error("Failed to clean up finished tasks", "error", err)
			return
		}
		logger.Info("Finished provisioning tasks cleaned up", "deleted", deleted)
	})
}
