package users

import "time"

// User represents a staff or customer account referencing a role by name.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	AssignedMachines []string  `json:"assignedMachines,omitempty"`
	AssignedRegions  []string  `json:"assignedRegions,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
