package service

import (
	"errors"

	"cloudpilot-backend/internal/domain"
)

var ErrNoApprovalAccess = errors.New("role has no approval screen")

// RoleRouter reconciles the two role vocabularies: session roles
// (ADMIN/HEAD/LEADER/MEMBER) and request-origin roles
// (employee/team-leader). The tables are explicit so the wiring between
// the two can be adjusted without touching workflow code.
type RoleRouter struct {
	landingPages    map[domain.SessionRole]string
	approvalScreens map[domain.SessionRole]string
	firstApprovers  map[domain.RequesterRole]domain.SessionRole
	finalApprovers  map[domain.RequesterRole]domain.SessionRole
	queueAliases    map[domain.SessionRole]domain.SessionRole
}

func NewRoleRouter() *RoleRouter {
	return &RoleRouter{
		landingPages: map[domain.SessionRole]string{
			domain.SessionRoleAdmin:  "/admin",
			domain.SessionRoleHead:   "/",
			domain.SessionRoleLeader: "/",
			domain.SessionRoleMember: "/",
		},
		approvalScreens: map[domain.SessionRole]string{
			domain.SessionRoleLeader: "/team-leader-approval",
			domain.SessionRoleHead:   "/head-approval",
			domain.SessionRoleAdmin:  "/head-approval",
		},
		firstApprovers: map[domain.RequesterRole]domain.SessionRole{
			domain.RequesterRoleEmployee:   domain.SessionRoleLeader,
			domain.RequesterRoleTeamLeader: domain.SessionRoleHead,
		},
		finalApprovers: map[domain.RequesterRole]domain.SessionRole{
			domain.RequesterRoleEmployee:   domain.SessionRoleHead,
			domain.RequesterRoleTeamLeader: domain.SessionRoleHead,
		},
		// ADMIN works the department-head queue rather than having one of
		// its own.
		queueAliases: map[domain.SessionRole]domain.SessionRole{
			domain.SessionRoleAdmin: domain.SessionRoleHead,
		},
	}
}

// LandingPageFor returns the page a fresh login should be routed to.
func (r *RoleRouter) LandingPageFor(role domain.SessionRole) string {
	if page, ok := r.landingPages[role]; ok {
		return page
	}
	return "/"
}

// ApprovalScreenFor returns the approval screen for a session role, or
// ErrNoApprovalAccess when the role has none.
func (r *RoleRouter) ApprovalScreenFor(role domain.SessionRole) (string, error) {
	screen, ok := r.approvalScreens[role]
	if !ok {
		return "", ErrNoApprovalAccess
	}
	return screen, nil
}

// FirstApproverFor returns the queue that first sees a request submitted
// by the given request-origin role.
func (r *RoleRouter) FirstApproverFor(origin domain.RequesterRole) domain.SessionRole {
	return r.firstApprovers[origin]
}

func (r *RoleRouter) FinalApproverFor(origin domain.RequesterRole) domain.SessionRole {
	return r.finalApprovers[origin]
}

// QueueRoleFor resolves the notification queue a session role reads.
func (r *RoleRouter) QueueRoleFor(role domain.SessionRole) domain.SessionRole {
	if alias, ok := r.queueAliases[role]; ok {
		return alias
	}
	return role
}

// SubmitNotificationType tags the submission notification by which queue
// it lands in.
func (r *RoleRouter) SubmitNotificationType(origin domain.RequesterRole) domain.NotificationType {
	if origin == domain.RequesterRoleTeamLeader {
		return domain.NotificationTypeManagerPackageRequest
	}
	return domain.NotificationTypeTeamLeaderPackageRequest
}
