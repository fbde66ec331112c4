package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/terminal-backend/internal/models"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func newOperation() models.Operation {
	now := time.Date(2025, 1, 14, 8, 30, 0, 0, time.UTC)
	return models.Operation{
		OperationID:   "MAE-DIS-20250114083000",
		VesselID:      "MAE-VSL-20250114080000",
		OperationType: models.OpDischarge,
		CurrentStep:   1,
		Status:        models.OpStatusInitiated,
		Priority:      models.PriorityMedium,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func completeStep1(t *testing.T, op *models.Operation) {
	t.Helper()
	res, err := CompleteStep(op, Step1Input{
		PilotEmbarked:        boolPtr(true),
		CustomsClearance:     boolPtr(true),
		ImmigrationClearance: boolPtr(true),
		PortHealthClearance:  boolPtr(true),
		ManifestSubmitted:    boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, res.Advanced)
}

func completeStep2(t *testing.T, op *models.Operation) {
	t.Helper()
	res, err := CompleteStep(op, Step2Input{
		BerthAssigned:           strPtr("B2"),
		MooringCompleted:        boolPtr(true),
		SafetyBriefingCompleted: boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, res.Advanced)
}

func completeStep3(t *testing.T, op *models.Operation) {
	t.Helper()
	res, err := CompleteStep(op, Step3Input{
		TotalCargoQuantity:     intPtr(500),
		ProcessedCargoQuantity: intPtr(500),
	}, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, res.Advanced)
}

func TestStep1ChecklistGatesAdvance(t *testing.T) {
	op := newOperation()

	// Four of five clearances: fields recorded, no advance, no error.
	res, err := CompleteStep(&op, Step1Input{
		PilotEmbarked:        boolPtr(true),
		CustomsClearance:     boolPtr(true),
		ImmigrationClearance: boolPtr(true),
		PortHealthClearance:  boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.False(t, res.Completed)
	assert.Equal(t, 1, op.CurrentStep)
	assert.True(t, op.PilotEmbarked)
	assert.False(t, op.Step1Completed)

	// Last item arrives; earlier fields are retained and the step closes.
	res, err = CompleteStep(&op, Step1Input{ManifestSubmitted: boolPtr(true)}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.True(t, res.Completed)
	assert.Equal(t, 2, op.CurrentStep)
	assert.True(t, op.Step1Completed)
}

func TestStep1AnyMissingFieldBlocks(t *testing.T) {
	fields := []string{"pilot", "customs", "immigration", "health", "manifest"}
	for skip := range fields {
		op := newOperation()
		in := Step1Input{
			PilotEmbarked:        boolPtr(skip != 0),
			CustomsClearance:     boolPtr(skip != 1),
			ImmigrationClearance: boolPtr(skip != 2),
			PortHealthClearance:  boolPtr(skip != 3),
			ManifestSubmitted:    boolPtr(skip != 4),
		}
		res, err := CompleteStep(&op, in, time.Now().UTC())
		require.NoError(t, err)
		assert.Falsef(t, op.Step1Completed, "missing %s must block completion", fields[skip])
		assert.False(t, res.Advanced)
		assert.Equal(t, 1, op.CurrentStep)
	}
}

func TestStep2RequiresBerthAndMooring(t *testing.T) {
	op := newOperation()
	completeStep1(t, &op)

	res, err := CompleteStep(&op, Step2Input{
		MooringCompleted:        boolPtr(true),
		SafetyBriefingCompleted: boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.Equal(t, 2, op.CurrentStep)

	res, err = CompleteStep(&op, Step2Input{BerthAssigned: strPtr("B1")}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, 3, op.CurrentStep)
	require.NotNil(t, op.BerthAssignedAt)
}

func TestStep3CompletesOnQuantity(t *testing.T) {
	op := newOperation()
	completeStep1(t, &op)
	completeStep2(t, &op)

	res, err := CompleteStep(&op, Step3Input{
		TotalCargoQuantity:     intPtr(500),
		ProcessedCargoQuantity: intPtr(480),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Advanced)

	res, err = CompleteStep(&op, Step3Input{ProcessedCargoQuantity: intPtr(500)}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, 4, op.CurrentStep)
}

func TestCargoProgressAccumulatesAndAutoCompletes(t *testing.T) {
	op := newOperation()
	completeStep1(t, &op)
	completeStep2(t, &op)

	_, err := CompleteStep(&op, Step3Input{TotalCargoQuantity: intPtr(300)}, time.Now().UTC())
	require.NoError(t, err)

	res, err := UpdateCargoProgress(&op, 120, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.Equal(t, 120, *op.ProcessedCargoQuantity)

	res, err = UpdateCargoProgress(&op, 180, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.True(t, op.Step3Completed)
	assert.Equal(t, 4, op.CurrentStep)
}

func TestCargoProgressRejectsNegative(t *testing.T) {
	op := newOperation()
	_, err := UpdateCargoProgress(&op, -10, time.Now().UTC())
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestStep4CompletesOperation(t *testing.T) {
	op := newOperation()
	completeStep1(t, &op)
	completeStep2(t, &op)
	completeStep3(t, &op)

	res, err := CompleteStep(&op, Step4Input{
		CargoCompletionConfirmed: boolPtr(true),
		FinalCustomsClearance:    boolPtr(true),
		PortDuesPaid:             boolPtr(true),
		DepartureClearanceIssued: boolPtr(true),
		PilotDisembarked:         boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, models.OpStatusCompleted, op.Status)
	require.NotNil(t, op.CompletedAt)
	assert.Equal(t, 4, op.CurrentStep)
}

func TestOutOfOrderFieldsRecordedWithoutAdvance(t *testing.T) {
	op := newOperation()

	// Step 4 data while the workflow is on step 1: recorded, nothing moves.
	res, err := CompleteStep(&op, Step4Input{PortDuesPaid: boolPtr(true)}, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.True(t, op.PortDuesPaid)
	assert.Equal(t, 1, op.CurrentStep)
	assert.Equal(t, models.OpStatusInitiated, op.Status)
}

func TestStepSatisfiedEarlyAdvancesOnRecheck(t *testing.T) {
	op := newOperation()

	// Step 2 checklist satisfied while the workflow is still on step 1.
	res, err := CompleteStep(&op, Step2Input{
		BerthAssigned:           strPtr("B2"),
		MooringCompleted:        boolPtr(true),
		SafetyBriefingCompleted: boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, op.Step2Completed)
	assert.False(t, res.Advanced)
	assert.Equal(t, 1, op.CurrentStep)

	completeStep1(t, &op)
	assert.Equal(t, 2, op.CurrentStep)

	// A field-free re-check call moves past the already-complete step.
	res, err = CompleteStep(&op, Step2Input{}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, 3, op.CurrentStep)
}

func TestCargoTargetMetEarlyCompletesWorkflow(t *testing.T) {
	op := newOperation()

	// Quantities hit the target while the workflow is still on step 1.
	_, err := CompleteStep(&op, Step3Input{
		TotalCargoQuantity:     intPtr(1000),
		ProcessedCargoQuantity: intPtr(1000),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, op.Step3Completed)
	assert.Equal(t, 1, op.CurrentStep)

	completeStep1(t, &op)
	completeStep2(t, &op)
	assert.Equal(t, 3, op.CurrentStep)

	res, err := UpdateCargoProgress(&op, 0, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, 4, op.CurrentStep)

	res, err = CompleteStep(&op, Step4Input{
		CargoCompletionConfirmed: boolPtr(true),
		FinalCustomsClearance:    boolPtr(true),
		PortDuesPaid:             boolPtr(true),
		DepartureClearanceIssued: boolPtr(true),
		PilotDisembarked:         boolPtr(true),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, models.OpStatusCompleted, op.Status)
	require.NotNil(t, op.CompletedAt)
}

func TestTerminalOperationRejectsSteps(t *testing.T) {
	op := newOperation()
	require.NoError(t, CancelOperation(&op, time.Now().UTC()))

	_, err := CompleteStep(&op, Step1Input{PilotEmbarked: boolPtr(true)}, time.Now().UTC())
	assert.Equal(t, CodeInvalidState, CodeOf(err))

	err = CancelOperation(&op, time.Now().UTC())
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestStep3RejectsNegativeQuantities(t *testing.T) {
	op := newOperation()
	_, err := CompleteStep(&op, Step3Input{TotalCargoQuantity: intPtr(-1)}, time.Now().UTC())
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestCanProceedToStep(t *testing.T) {
	op := newOperation()
	assert.True(t, CanProceedToStep(op, 1))
	assert.False(t, CanProceedToStep(op, 2))
	assert.False(t, CanProceedToStep(op, 0))
	assert.False(t, CanProceedToStep(op, 5))

	completeStep1(t, &op)
	assert.True(t, CanProceedToStep(op, 2))
	assert.False(t, CanProceedToStep(op, 3))
}

func TestOperationJSONRoundTrip(t *testing.T) {
	op := newOperation()
	completeStep1(t, &op)
	completeStep2(t, &op)

	raw, err := json.Marshal(op)
	require.NoError(t, err)

	var back models.Operation
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, op.CurrentStep, back.CurrentStep)
	assert.Equal(t, op.Status, back.Status)
	assert.Equal(t, op.Step1Completed, back.Step1Completed)
	assert.Equal(t, op.Step2Completed, back.Step2Completed)
	assert.Equal(t, op.Step3Completed, back.Step3Completed)
	assert.Equal(t, op.Step4Completed, back.Step4Completed)
	require.NotNil(t, back.BerthAssigned)
	assert.Equal(t, "B2", *back.BerthAssigned)
}
