package entity

// Approver is an authorized signer in the finance office. DailyCapacity is
// the declared comfortable pending load used for workload percentages.
type Approver struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	DailyCapacity int    `json:"daily_capacity"`
}

// ApproverWorkload is a derived, on-demand view of an approver's load. It is
// never persisted.
type ApproverWorkload struct {
	ApproverID    string `json:"approver_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	DailyCapacity int    `json:"daily_capacity"`

	AssignedCount    int `json:"assigned_count"`
	PendingCount     int `json:"pending_count"`
	SignedTodayCount int `json:"signed_today_count"`
	WorkloadPercent  int `json:"workload_percent"`
}
