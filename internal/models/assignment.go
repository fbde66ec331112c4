package models

import "time"

// Ledger entry kinds.
const (
	AssigneeUser      = "user"
	AssigneeEquipment = "equipment"
)

// Ledger entry statuses.
const (
	AssignmentAssigned  = "assigned"
	AssignmentActive    = "active"
	AssignmentCompleted = "completed"
	AssignmentCancelled = "cancelled"
)

// Assignment is a ledger entry linking a user or an equipment unit to an
// operation. Entries are immutable once completed or cancelled.
type Assignment struct {
	ID          string `json:"id"`
	OperationID string `json:"operation_id"`
	VesselID    string `json:"vessel_id"`

	AssigneeID   string `json:"assignee_id"`
	AssigneeKind string `json:"assignee_kind"`
	Role         string `json:"role"`

	Status string `json:"status"`

	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	ActualStart    *time.Time `json:"actual_start"`
	ActualEnd      *time.Time `json:"actual_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
