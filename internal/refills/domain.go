package refills

import "time"

// Status describes a refill job's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Job represents one machine refill assignment.
type Job struct {
	ID           string    `json:"id"`
	MachineID    string    `json:"machineId"`
	AssignedTo   *int64    `json:"assignedTo,omitempty"`
	Status       Status    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
