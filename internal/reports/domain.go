package reports

// RevenueRow is one machine's aggregate over the requested window.
type RevenueRow struct {
	MachineID    string  `json:"machineId"`
	Code         string  `json:"code,omitempty"`
	Location     string  `json:"location,omitempty"`
	GrossRevenue float64 `json:"grossRevenue"`
	TxCount      int64   `json:"txCount,omitempty"`
}

// RevenueReport is the revenue endpoint's response body.
type RevenueReport struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Total float64      `json:"total"`
	Rows  []RevenueRow `json:"rows"`
}
