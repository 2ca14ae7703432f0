package domain

import "time"

type NotificationType string

const (
	// Submitted by a plain employee, lands in the team-leader queue.
	NotificationTypeTeamLeaderPackageRequest NotificationType = "team_leader_package_request"
	// Submitted by a team leader, lands in the department-head queue.
	NotificationTypeManagerPackageRequest NotificationType = "manager_package_request"
	NotificationTypeFirstApproval         NotificationType = "first_approval"
	NotificationTypeFinalApproval         NotificationType = "final_approval"
	NotificationTypeVMReady               NotificationType = "vm_ready"
	NotificationTypeApprovalReminder      NotificationType = "approval_reminder"
)

// Notification is addressed either to a role queue (RecipientRole set) or
// to a single employee (RecipientID set). RequestID is a back-reference to
// a PackageRequest, not ownership.
type Notification struct {
	ID            string           `json:"id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	RequestID     string           `json:"request_id,omitempty"`
	RecipientRole SessionRole      `json:"recipient_role,omitempty"`
	RecipientID   string           `json:"recipient_id,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	Read          bool             `json:"read"`
}
