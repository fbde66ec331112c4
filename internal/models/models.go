package models

import "time"

// Cargo discharge zones on the terminal side.
const (
	ZoneBRV = "BRV"
	ZoneZEE = "ZEE"
	ZoneSOU = "SOU"
)

// Vessel statuses, in lifecycle order.
const (
	VesselExpected           = "expected"
	VesselArrived            = "arrived"
	VesselBerthed            = "berthed"
	VesselOperationsActive   = "operations_active"
	VesselOperationsComplete = "operations_complete"
	VesselDeparted           = "departed"
)

// Berth statuses.
const (
	BerthActive      = "active"
	BerthMaintenance = "maintenance"
	BerthClosed      = "closed"
)

type Vessel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IMONumber  string `json:"imo_number"`
	CallSign   string `json:"call_sign"`
	VesselType string `json:"vessel_type"`

	LengthOverall float64 `json:"length_overall"`
	Draft         float64 `json:"draft"`

	Status       string  `json:"status"`
	CurrentBerth *string `json:"current_berth"`

	BRVTarget    int `json:"brv_target"`
	BRVCompleted int `json:"brv_completed"`
	ZEETarget    int `json:"zee_target"`
	ZEECompleted int `json:"zee_completed"`
	SOUTarget    int `json:"sou_target"`
	SOUCompleted int `json:"sou_completed"`

	TotalDischargeTarget int `json:"total_discharge_target"`
	TotalDischarged      int `json:"total_discharged"`

	ETA        *time.Time `json:"eta"`
	ArrivedAt  *time.Time `json:"arrived_at"`
	DepartedAt *time.Time `json:"departed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Berth struct {
	Number    string  `json:"number"`
	BerthType string  `json:"berth_type"`
	MaxLength float64 `json:"max_length"`
	MaxDraft  float64 `json:"max_draft"`
	Status    string  `json:"status"`
}
