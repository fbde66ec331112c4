package service

import (
	"time"

	"github.com/quayline/terminal-backend/internal/models"
)

// Per-step inputs. Nil fields mean "leave the recorded value as-is"; a
// completion call with no fields set is legal and simply re-checks the
// checklist.

type Step1Input struct {
	PilotEmbarked        *bool `json:"pilot_embarked"`
	CustomsClearance     *bool `json:"customs_clearance"`
	ImmigrationClearance *bool `json:"immigration_clearance"`
	PortHealthClearance  *bool `json:"port_health_clearance"`
	ManifestSubmitted    *bool `json:"manifest_submitted"`
}

type Step2Input struct {
	BerthAssigned           *string `json:"berth_assigned"`
	MooringCompleted        *bool   `json:"mooring_completed"`
	SafetyBriefingCompleted *bool   `json:"safety_briefing_completed"`
}

type Step3Input struct {
	TotalCargoQuantity     *int     `json:"total_cargo_quantity"`
	ProcessedCargoQuantity *int     `json:"processed_cargo_quantity"`
	AssignedTeamID         *string  `json:"assigned_team_id"`
	AssignedEquipment      []string `json:"assigned_equipment"`
}

type Step4Input struct {
	CargoCompletionConfirmed *bool `json:"cargo_completion_confirmed"`
	FinalCustomsClearance    *bool `json:"final_customs_clearance"`
	PortDuesPaid             *bool `json:"port_dues_paid"`
	DepartureClearanceIssued *bool `json:"departure_clearance_issued"`
	PilotDisembarked         *bool `json:"pilot_disembarked"`
}

// StepInput is implemented by the four per-step input types.
type StepInput interface {
	step() int
}

func (Step1Input) step() int { return 1 }
func (Step2Input) step() int { return 2 }
func (Step3Input) step() int { return 3 }
func (Step4Input) step() int { return 4 }

// StepResult reports what a completion call did. A failed checklist is
// not an error: fields are recorded and Advanced stays false.
type StepResult struct {
	Step        int    `json:"step"`
	Completed   bool   `json:"completed"`
	Advanced    bool   `json:"advanced"`
	CurrentStep int    `json:"current_step"`
	Status      string `json:"status"`
}

// CompleteStep records the provided fields unconditionally, evaluates the
// step's required-field checklist, and on success marks the step complete
// and advances the workflow. Steps may be completed out of order in the
// data, but CurrentStep only moves forward in sequence.
func CompleteStep(op *models.Operation, in StepInput, now time.Time) (StepResult, error) {
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return StepResult{}, InvalidStatef("operation %s is %s", op.OperationID, op.Status)
	}

	step := in.step()
	switch v := in.(type) {
	case Step1Input:
		applyBool(&op.PilotEmbarked, v.PilotEmbarked)
		applyBool(&op.CustomsClearance, v.CustomsClearance)
		applyBool(&op.ImmigrationClearance, v.ImmigrationClearance)
		applyBool(&op.PortHealthClearance, v.PortHealthClearance)
		applyBool(&op.ManifestSubmitted, v.ManifestSubmitted)
	case Step2Input:
		if v.BerthAssigned != nil {
			berth := *v.BerthAssigned
			op.BerthAssigned = &berth
			at := now
			op.BerthAssignedAt = &at
		}
		applyBool(&op.MooringCompleted, v.MooringCompleted)
		applyBool(&op.SafetyBriefingCompleted, v.SafetyBriefingCompleted)
	case Step3Input:
		if v.TotalCargoQuantity != nil {
			if *v.TotalCargoQuantity < 0 {
				return StepResult{}, Validationf("total_cargo_quantity must be non-negative")
			}
			qty := *v.TotalCargoQuantity
			op.TotalCargoQuantity = &qty
		}
		if v.ProcessedCargoQuantity != nil {
			if *v.ProcessedCargoQuantity < 0 {
				return StepResult{}, Validationf("processed_cargo_quantity must be non-negative")
			}
			qty := *v.ProcessedCargoQuantity
			op.ProcessedCargoQuantity = &qty
		}
		if v.AssignedTeamID != nil {
			id := *v.AssignedTeamID
			op.AssignedTeamID = &id
		}
		if v.AssignedEquipment != nil {
			op.AssignedEquipment = v.AssignedEquipment
		}
	case Step4Input:
		applyBool(&op.CargoCompletionConfirmed, v.CargoCompletionConfirmed)
		applyBool(&op.FinalCustomsClearance, v.FinalCustomsClearance)
		applyBool(&op.PortDuesPaid, v.PortDuesPaid)
		applyBool(&op.DepartureClearanceIssued, v.DepartureClearanceIssued)
		applyBool(&op.PilotDisembarked, v.PilotDisembarked)
	}

	result := StepResult{Step: step}
	if checklistSatisfied(op, step) {
		// Steps completed ahead of the active one re-check here once
		// CurrentStep catches up, so advance runs on every pass.
		setStepFlag(op, step)
		result.Completed = true
		result.Advanced = advance(op, step, now)
	} else if stepFlag(op, step) {
		result.Completed = true
	}
	op.UpdatedAt = now

	result.CurrentStep = op.CurrentStep
	result.Status = op.Status
	return result, nil
}

// UpdateCargoProgress accumulates processed cargo quantity and re-checks
// the step 3 auto-completion condition.
func UpdateCargoProgress(op *models.Operation, qty int, now time.Time) (StepResult, error) {
	if qty < 0 {
		return StepResult{}, Validationf("quantity must be non-negative, got %d", qty)
	}
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return StepResult{}, InvalidStatef("operation %s is %s", op.OperationID, op.Status)
	}

	processed := qty
	if op.ProcessedCargoQuantity != nil {
		processed = *op.ProcessedCargoQuantity + qty
	}
	op.ProcessedCargoQuantity = &processed

	result := StepResult{Step: 3}
	if checklistSatisfied(op, 3) {
		op.Step3Completed = true
		result.Completed = true
		result.Advanced = advance(op, 3, now)
	} else if op.Step3Completed {
		result.Completed = true
	}
	op.UpdatedAt = now

	result.CurrentStep = op.CurrentStep
	result.Status = op.Status
	return result, nil
}

// CanProceedToStep gates workflow actions without mutating state: true if
// n is at or before the current step, or every step strictly before n is
// already complete.
func CanProceedToStep(op models.Operation, n int) bool {
	if n < 1 || n > 4 {
		return false
	}
	if n <= op.CurrentStep {
		return true
	}
	for i := 1; i < n; i++ {
		if !stepFlag(&op, i) {
			return false
		}
	}
	return true
}

// CancelOperation is the escape hatch out of any non-terminal state.
func CancelOperation(op *models.Operation, now time.Time) error {
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return InvalidStatef("operation %s is already %s", op.OperationID, op.Status)
	}
	op.Status = models.OpStatusCancelled
	op.UpdatedAt = now
	return nil
}

// advance moves CurrentStep forward when the just-completed step is the
// active one. Completing step 4 terminates the operation.
func advance(op *models.Operation, step int, now time.Time) bool {
	if op.CurrentStep != step || !stepFlag(op, step) {
		return false
	}
	if step == 4 {
		op.Status = models.OpStatusCompleted
		at := now
		op.CompletedAt = &at
		return true
	}
	op.CurrentStep = step + 1
	return true
}

func checklistSatisfied(op *models.Operation, step int) bool {
	switch step {
	case 1:
		return op.PilotEmbarked && op.CustomsClearance && op.ImmigrationClearance &&
			op.PortHealthClearance && op.ManifestSubmitted
	case 2:
		return op.BerthAssigned != nil && op.MooringCompleted && op.SafetyBriefingCompleted
	case 3:
		return op.TotalCargoQuantity != nil && op.ProcessedCargoQuantity != nil &&
			*op.ProcessedCargoQuantity >= *op.TotalCargoQuantity
	case 4:
		return op.CargoCompletionConfirmed && op.FinalCustomsClearance &&
			op.PortDuesPaid && op.DepartureClearanceIssued && op.PilotDisembarked
	default:
		return false
	}
}

func stepFlag(op *models.Operation, step int) bool {
	switch step {
	case 1:
		return op.Step1Completed
	case 2:
		return op.Step2Completed
	case 3:
		return op.Step3Completed
	case 4:
		return op.Step4Completed
	default:
		return false
	}
}

func setStepFlag(op *models.Operation, step int) {
	switch step {
	case 1:
		op.Step1Completed = true
	case 2:
		op.Step2Completed = true
	case 3:
		op.Step3Completed = true
	case 4:
		op.Step4Completed = true
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
