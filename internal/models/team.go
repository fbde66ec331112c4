package models

import "time"

// Stevedore team statuses.
const (
	TeamAvailable = "available"
	TeamAssigned  = "assigned"
	TeamOffDuty   = "off_duty"
	TeamTraining  = "training"
)

// Shift patterns.
const (
	ShiftDay      = "day"
	ShiftNight    = "night"
	ShiftRotating = "rotating"
	ShiftOnCall   = "on_call"
)

// StevedoreTeam is a dockworker gang with capability and shift metadata.
// ZoneAssignment nil means the team works any zone. Teams are never hard
// deleted; off_duty and training are soft states.
type StevedoreTeam struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Leader     string `json:"leader"`
	Supervisor string `json:"supervisor"`

	Status         string  `json:"status"`
	ZoneAssignment *string `json:"zone_assignment"`

	CargoSpecialization []string `json:"cargo_specialization"`
	CertifiedEquipment  []string `json:"certified_equipment"`

	ShiftPattern string  `json:"shift_pattern"`
	ShiftStart   *string `json:"shift_start"` // "HH:MM", nil when unset
	ShiftEnd     *string `json:"shift_end"`

	ProductivityRating float64 `json:"productivity_rating"` // 0-10
	SafetyRecord       float64 `json:"safety_record"`       // 0-10

	CurrentAssignment *string    `json:"current_assignment"`
	LastAssignment    *time.Time `json:"last_assignment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
