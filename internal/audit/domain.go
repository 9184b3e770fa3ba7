package audit

import "time"

// Entry is one persisted authorization outcome.
type Entry struct {
	ID          int64     `json:"id"`
	At          time.Time `json:"at"`
	PrincipalID int64     `json:"principalId"`
	Role        string    `json:"role"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
}

// TimelineFilters narrows the timeline query.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Role     string
	Resource string
	Outcome  string
	Page     int
	PageSize int
}

// PagingInfo carries pagination state for the timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []Entry    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}
