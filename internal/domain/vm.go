package domain

import "time"

type VMType string

const (
	VMTypePrivate VMType = "private"
	VMTypePublic  VMType = "public"
)

type VirtualMachine struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         VMType    `json:"type"`
	CPU          int32     `json:"cpu"`
	MemoryGB     int32     `json:"memory_gb"`
	StorageGB    int32     `json:"storage_gb"`
	OS           string    `json:"os"`
	Count        int32     `json:"count"`
	AssignedTeam string    `json:"assigned_team"`
	// Assignments maps VM instance index to the employee ID it is
	// assigned to. At most one assignee per instance.
	Assignments map[int32]string `json:"assignments,omitempty"`
	OwnerID     string           `json:"owner_id"`
	CreatedOn   time.Time        `json:"created_on"`
}

type TaskState string

const (
	TaskStateQueued    TaskState = "queued"
	TaskStateRunning   TaskState = "running"
	TaskStateSucceeded TaskState = "succeeded"
	TaskStateFailed    TaskState = "failed"
)

// ProvisionTask tracks asynchronous VM provisioning. Consumers poll it
// instead of watching a client-side counter.
type ProvisionTask struct {
	ID        string    `json:"id"`
	VMID      string    `json:"vm_id"`
	State     TaskState `json:"state"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

func (t *ProvisionTask) Finished() bool {
	return t.State == TaskStateSucceeded || t.State == TaskStateFailed
}

type InstalledPackage struct {
	ID          string    `json:"id"`
	VMID        string    `json:"vm_id"`
	Name        string    `json:"name"`
	Version     string    `json:"version,omitempty"`
	InstalledOn time.Time `json:"installed_on"`
}
