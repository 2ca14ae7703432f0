package domain

import "time"

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// RequesterRole is the role a request originated from. It decides which
// queue handles the first approval and is independent of the session
// role vocabulary.
type RequesterRole string

const (
	RequesterRoleEmployee   RequesterRole = "employee"
	RequesterRoleTeamLeader RequesterRole = "team-leader"
)

type PackageItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// PackageRequest is a two-stage approval record. The final stage only
// transitions once the first stage is approved; a first-line rejection
// is terminal.
type PackageRequest struct {
	ID                   string         `json:"id"`
	Packages             []PackageItem  `json:"packages"`
	FirstApprovalStatus  ApprovalStatus `json:"first_approval_status"`
	FinalApprovalStatus  ApprovalStatus `json:"final_approval_status"`
	Requester            string         `json:"requester"`
	EmployeeID           string         `json:"employee_id"`
	RequesterRole        RequesterRole  `json:"requester_role"`
	RequestDate          time.Time      `json:"request_date"`
	FirstApprovedDate    *time.Time     `json:"first_approved_date,omitempty"`
	FirstRejectionReason string         `json:"first_rejection_reason,omitempty"`
	FinalApprovedDate    *time.Time     `json:"final_approved_date,omitempty"`
	FinalRejectionReason string         `json:"final_rejection_reason,omitempty"`
}

// Terminal reports whether no further approval transition is possible.
func (r *PackageRequest) Terminal() bool {
	return r.FirstApprovalStatus == ApprovalStatusRejected ||
		r.FinalApprovalStatus != ApprovalStatusPending
}
