package models

import "time"

// Operation types.
const (
	OpDischarge   = "discharge"
	OpLoading     = "loading"
	OpBunkering   = "bunkering"
	OpMaintenance = "maintenance"
)

// Operation statuses.
const (
	OpStatusInitiated  = "initiated"
	OpStatusInProgress = "in_progress"
	OpStatusCompleted  = "completed"
	OpStatusCancelled  = "cancelled"
)

// Operation priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Operation is a vessel's four-step workflow from arrival to departure
// clearance. Step fields may be recorded out of order; CurrentStep only
// ever moves forward.
type Operation struct {
	OperationID   string `json:"operation_id"`
	VesselID      string `json:"vessel_id"`
	OperationType string `json:"operation_type"`

	CurrentStep int    `json:"current_step"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`

	// Step 1: arrival and documentation.
	Step1Completed       bool `json:"step_1_completed"`
	PilotEmbarked        bool `json:"pilot_embarked"`
	CustomsClearance     bool `json:"customs_clearance"`
	ImmigrationClearance bool `json:"immigration_clearance"`
	PortHealthClearance  bool `json:"port_health_clearance"`
	ManifestSubmitted    bool `json:"manifest_submitted"`

	// Step 2: berth and positioning.
	Step2Completed          bool       `json:"step_2_completed"`
	BerthAssigned           *string    `json:"berth_assigned"`
	BerthAssignedAt         *time.Time `json:"berth_assigned_at"`
	MooringCompleted        bool       `json:"mooring_completed"`
	SafetyBriefingCompleted bool       `json:"safety_briefing_completed"`

	// Step 3: cargo operations.
	Step3Completed         bool     `json:"step_3_completed"`
	TotalCargoQuantity     *int     `json:"total_cargo_quantity"`
	ProcessedCargoQuantity *int     `json:"processed_cargo_quantity"`
	AssignedTeamID         *string  `json:"assigned_team_id"`
	AssignedEquipment      []string `json:"assigned_equipment"`

	// Step 4: departure clearance.
	Step4Completed           bool `json:"step_4_completed"`
	CargoCompletionConfirmed bool `json:"cargo_completion_confirmed"`
	FinalCustomsClearance    bool `json:"final_customs_clearance"`
	PortDuesPaid             bool `json:"port_dues_paid"`
	DepartureClearanceIssued bool `json:"departure_clearance_issued"`
	PilotDisembarked         bool `json:"pilot_disembarked"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
