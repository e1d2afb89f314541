package transport

// StateResponse is the displayed state for one client. Derived is false
// when no decision-list rule applied and the free-text fallback is shown.
type StateResponse struct {
	ClientID int64  `json:"clientId"`
	State    string `json:"state"`
	Rule     string `json:"rule,omitempty"`
	Derived  bool   `json:"derived"`
}

// VisitGroupResponse is one resolved visit group for display/audit.
type VisitGroupResponse struct {
	Day                    string   `json:"day"`
	Type                   string   `json:"type"`
	Datetime               *string  `json:"datetime,omitempty"`
	Attendance             string   `json:"attendance"`
	Staff                  *string  `json:"staff,omitempty"`
	StaffNames             []string `json:"staffNames"`
	Services               []VisitServiceResponse `json:"services"`
	TotalCostMinor         int64    `json:"totalCostMinor"`
	UniqueMastersCostMinor int64    `json:"uniqueMastersCostMinor"`
	Events                 int      `json:"events"`
}

// VisitServiceResponse is one service line of a visit group.
type VisitServiceResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CostMinor int64  `json:"costMinor"`
}

// VisitGroupListResponse wraps a client's visit groups, newest first.
type VisitGroupListResponse struct {
	ClientID int64                `json:"clientId"`
	Items    []VisitGroupResponse `json:"items"`
}

// SetStoredStateRequest updates the free-text fallback state.
type SetStoredStateRequest struct {
	State string `json:"state" validate:"required,notblank,max=200"`
}
