package machines

import "time"

// Status describes a machine's operational state.
type Status string

const (
	StatusActive      Status = "active"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// Machine represents one vending machine in the fleet.
type Machine struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Location  string    `json:"location"`
	Region    string    `json:"region"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
