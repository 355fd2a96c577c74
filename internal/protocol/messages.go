package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Role            string `json:"role,omitempty"` // "observer" (default) or "operator"
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	ClientID        string       `json:"client_id"`
	EngineParams    EngineParams `json:"engine_params"`
}

type EngineParams struct {
	AgencyID   string  `json:"agency_id"`
	Seed       int64   `json:"seed"`
	DaySeconds float64 `json:"day_seconds"`
	FiscalYear int     `json:"fiscal_year"`
	CurrentDay uint64  `json:"current_day"`
}

// OBS (server -> client): one per simulated day.
type ObsMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Day             uint64       `json:"day"`
	Budget          BudgetView   `json:"budget"`
	Assets          []AssetView  `json:"assets"`
	Projects        []ProjectView `json:"projects"`
	Notices         []string     `json:"notices,omitempty"`
	Digest          string       `json:"digest"`
}

type BudgetView struct {
	FiscalYear int     `json:"fiscal_year"`
	Total      float64 `json:"total_budget"`
	Allocated  float64 `json:"allocated_funds"`
	Available  float64 `json:"available_funds"`
}

type AssetView struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Condition float64 `json:"condition"`
	Traffic   int     `json:"traffic_volume"`
	Capacity  int     `json:"capacity"`
}

type ProjectView struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"project_type"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	EstimatedCost  float64 `json:"estimated_cost"`
	AllocatedFunds float64 `json:"allocated_funds"`
	StartDay       uint64  `json:"start_day"`
	EndDay         uint64  `json:"end_day"`
	ContractorID   int     `json:"contractor_id,omitempty"`
	BidAmount      float64 `json:"bid_amount,omitempty"`
}

// CMD (client -> server): an operator action, applied at the next day
// boundary in arrival order.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"` // client-chosen, echoed in ACK
	Op              string `json:"op"`

	// PROPOSE_PROJECT
	Name            string  `json:"name,omitempty"`
	ProjectType     string  `json:"project_type,omitempty"`
	AssetIDs        []int   `json:"asset_ids,omitempty"`
	EstimatedCost   float64 `json:"estimated_cost,omitempty"`
	StartOffsetDays int     `json:"start_offset_days,omitempty"`
	DurationDays    int     `json:"duration_days,omitempty"`

	// APPROVE_PROJECT / ASSIGN_CONTRACTOR / CANCEL_PROJECT
	ProjectID uint64 `json:"project_id,omitempty"`

	// PERFORM_MAINTENANCE
	AssetID      int     `json:"asset_id,omitempty"`
	RepairAmount float64 `json:"repair_amount,omitempty"`

	// SCHEDULE_EVENT
	EventType string `json:"event_type,omitempty"`
	Impact    string `json:"impact,omitempty"`
	Day       uint64 `json:"day,omitempty"`
}

// Command ops.
const (
	OpProposeProject     = "PROPOSE_PROJECT"
	OpApproveProject     = "APPROVE_PROJECT"
	OpAssignContractor   = "ASSIGN_CONTRACTOR"
	OpCancelProject      = "CANCEL_PROJECT"
	OpPerformMaintenance = "PERFORM_MAINTENANCE"
	OpScheduleEvent      = "SCHEDULE_EVENT"
	OpSaveState          = "SAVE_STATE"
)

// ACK (server -> client)
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Day             uint64 `json:"day"`
	ProjectID       uint64 `json:"project_id,omitempty"`
}

// NOTICE (server -> client): an engine notification.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Day             uint64 `json:"day"`
	Text            string `json:"text"`
}
