package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/service"
)

func TestRoleRouter_LandingPages(t *testing.T) {
	router := service.NewRoleRouter()

	assert.Equal(t, "/admin", router.LandingPageFor(domain.SessionRoleAdmin))
	assert.Equal(t, "/", router.LandingPageFor(domain.SessionRoleHead))
	assert.Equal(t, "/", router.LandingPageFor(domain.SessionRoleLeader))
	assert.Equal(t, "/", router.LandingPageFor(domain.SessionRoleMember))
	assert.Equal(t, "/", router.LandingPageFor(domain.SessionRole("UNKNOWN")))
}

func TestRoleRouter_ApprovalScreens(t *testing.T) {
	router := service.NewRoleRouter()

	screen, err := router.ApprovalScreenFor(domain.SessionRoleLeader)
	require.NoError(t, err)
	assert.Equal(t, "/team-leader-approval", screen)

	screen, err = router.ApprovalScreenFor(domain.SessionRoleHead)
	require.NoError(t, err)
	assert.Equal(t, "/head-approval", screen)

	// Admins share the head screen.
	screen, err = router.ApprovalScreenFor(domain.SessionRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "/head-approval", screen)

	_, err = router.ApprovalScreenFor(domain.SessionRoleMember)
	assert.ErrorIs(t, err, service.ErrNoApprovalAccess)
}

func TestRoleRouter_ApproverQueues(t *testing.T) {
	router := service.NewRoleRouter()

	assert.Equal(t, domain.SessionRoleLeader, router.FirstApproverFor(domain.RequesterRoleEmployee))
	assert.Equal(t, domain.SessionRoleHead, router.FirstApproverFor(domain.RequesterRoleTeamLeader))
	assert.Equal(t, domain.SessionRoleHead, router.FinalApproverFor(domain.RequesterRoleEmployee))
	assert.Equal(t, domain.SessionRoleHead, router.FinalApproverFor(domain.RequesterRoleTeamLeader))

	assert.Equal(t, domain.SessionRoleHead, router.QueueRoleFor(domain.SessionRoleAdmin))
	assert.Equal(t, domain.SessionRoleLeader, router.QueueRoleFor(domain.SessionRoleLeader))
}

func TestNotificationService_AdminReadsHeadQueue(t *testing.T) {
	ctx := context.Background()
	noteRepo := new(MockNotificationRepo)
	svc := service.NewNotificationService(noteRepo, service.NewRoleRouter())

	noteRepo.On("ListForRecipient", ctx, domain.SessionRoleHead, "admin").
		Return([]domain.Notification{{ID: "n-1"}}, nil)
	noteRepo.On("CountUnread", ctx, domain.SessionRoleHead, "admin").Return(int32(1), nil)

	notes, err := svc.GetNotifications(ctx, domain.SessionRoleAdmin, "admin")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	count, err := svc.CountUnread(ctx, domain.SessionRoleAdmin, "admin")
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	noteRepo.AssertExpectations(t)
}
