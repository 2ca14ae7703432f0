package domain

import "time"

// SessionRole is the logged-in user's role. It drives page routing and
// visibility of the admin/approval UI and is distinct from RequesterRole.
type SessionRole string

const (
	SessionRoleAdmin  SessionRole = "ADMIN"
	SessionRoleHead   SessionRole = "HEAD"
	SessionRoleLeader SessionRole = "LEADER"
	SessionRoleMember SessionRole = "MEMBER"
)

type User struct {
	EmployeeID   string      `json:"employee_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         SessionRole `json:"role"`
	Team         string      `json:"team"`
	CreatedOn    time.Time   `json:"created_on"`
}

// RequestOriginRole maps a session role onto the request-origin vocabulary
// used by the approval workflow.
func (r SessionRole) RequestOriginRole() RequesterRole {
	if r == SessionRoleLeader {
		return RequesterRoleTeamLeader
	}
	return RequesterRoleEmployee
}
