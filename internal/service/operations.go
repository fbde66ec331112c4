package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/models"
)

var operationTypes = map[string]bool{
	models.OpDischarge:   true,
	models.OpLoading:     true,
	models.OpBunkering:   true,
	models.OpMaintenance: true,
}

var operationPriorities = map[string]bool{
	models.PriorityLow:    true,
	models.PriorityMedium: true,
	models.PriorityHigh:   true,
	models.PriorityUrgent: true,
}

type OperationService struct {
	Store  Store
	Logger zerolog.Logger

	opLocks *keyedMutex
}

func NewOperationService(store Store, logger zerolog.Logger) *OperationService {
	return &OperationService{Store: store, Logger: logger, opLocks: newKeyedMutex()}
}

type CreateOperationInput struct {
	VesselID           string `json:"vessel_id" binding:"required" validate:"required"`
	OperationType      string `json:"operation_type" binding:"required" validate:"required"`
	Priority           string `json:"priority"`
	TotalCargoQuantity *int   `json:"total_cargo_quantity"`
}

// Create initializes a new operation at step 1, status initiated.
func (s *OperationService) Create(ctx context.Context, in CreateOperationInput) (models.Operation, error) {
	if !operationTypes[in.OperationType] {
		return models.Operation{}, Validationf("unknown operation type %q", in.OperationType)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !operationPriorities[priority] {
		return models.Operation{}, Validationf("unknown priority %q", in.Priority)
	}
	if in.TotalCargoQuantity != nil && *in.TotalCargoQuantity < 0 {
		return models.Operation{}, Validationf("total_cargo_quantity must be non-negative")
	}

	vessel, err := s.Store.GetVessel(ctx, in.VesselID)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("vessel %s not found", in.VesselID)
	}
	if err != nil {
		return models.Operation{}, err
	}

	now := time.Now().UTC()
	op := models.Operation{
		OperationID:        OperationID(vessel.Name, in.OperationType, now),
		VesselID:           vessel.ID,
		OperationType:      in.OperationType,
		CurrentStep:        1,
		Status:             models.OpStatusInitiated,
		Priority:           priority,
		TotalCargoQuantity: in.TotalCargoQuantity,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Store.CreateOperation(ctx, op); err != nil {
		return models.Operation{}, err
	}
	s.Logger.Info().
		Str("operation_id", op.OperationID).
		Str("vessel_id", vessel.ID).
		Str("type", in.OperationType).
		Msg("operation created")
	return op, nil
}

func (s *OperationService) Get(ctx context.Context, id string) (models.Operation, error) {
	op, err := s.Store.GetOperation(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("operation %s not found", id)
	}
	return op, err
}

func (s *OperationService) List(ctx context.Context, vesselID, status string) ([]models.Operation, error) {
	return s.Store.ListOperations(ctx, vesselID, status)
}

// StepOutcome pairs the step result with the updated operation snapshot.
type StepOutcome struct {
	Result    StepResult       `json:"result"`
	Operation models.Operation `json:"operation"`
}

// CompleteStep records the step fields and advances the workflow when the
// checklist passes. A failed checklist is reported through
// Result.Advanced, not as an error. Completing step 4 also moves the
// owning vessel to operations_complete, in one transaction.
func (s *OperationService) CompleteStep(ctx context.Context, id string, in StepInput) (StepOutcome, error) {
	unlock := s.opLocks.Lock(id)
	defer unlock()

	op, err := s.Get(ctx, id)
	if err != nil {
		return StepOutcome{}, err
	}

	now := time.Now().UTC()
	result, err := CompleteStep(&op, in, now)
	if err != nil {
		return StepOutcome{}, err
	}

	if result.Advanced && op.Status == models.OpStatusCompleted {
		if err := s.completeVessel(ctx, op, now); err != nil {
			return StepOutcome{}, err
		}
	} else if err := s.Store.SaveOperation(ctx, op); err != nil {
		return StepOutcome{}, err
	}

	s.Logger.Info().
		Str("operation_id", id).
		Int("step", result.Step).
		Bool("advanced", result.Advanced).
		Int("current_step", op.CurrentStep).
		Msg("step completion")
	return StepOutcome{Result: result, Operation: op}, nil
}

// UpdateCargoProgress accumulates processed cargo and auto-completes step
// 3 when the target is reached.
func (s *OperationService) UpdateCargoProgress(ctx context.Context, id string, qty int) (StepOutcome, error) {
	unlock := s.opLocks.Lock(id)
	defer unlock()

	op, err := s.Get(ctx, id)
	if err != nil {
		return StepOutcome{}, err
	}

	now := time.Now().UTC()
	result, err := UpdateCargoProgress(&op, qty, now)
	if err != nil {
		return StepOutcome{}, err
	}
	if err := s.Store.SaveOperation(ctx, op); err != nil {
		return StepOutcome{}, err
	}
	return StepOutcome{Result: result, Operation: op}, nil
}

// Cancel is the escape hatch from any non-terminal state.
func (s *OperationService) Cancel(ctx context.Context, id string) (models.Operation, error) {
	unlock := s.opLocks.Lock(id)
	defer unlock()

	op, err := s.Get(ctx, id)
	if err != nil {
		return models.Operation{}, err
	}
	if err := CancelOperation(&op, time.Now().UTC()); err != nil {
		return models.Operation{}, err
	}
	if err := s.Store.SaveOperation(ctx, op); err != nil {
		return models.Operation{}, err
	}
	s.Logger.Info().Str("operation_id", id).Msg("operation cancelled")
	return op, nil
}

// completeVessel writes the finished operation together with the vessel
// status change as one transaction.
func (s *OperationService) completeVessel(ctx context.Context, op models.Operation, now time.Time) error {
	v, err := s.Store.GetVessel(ctx, op.VesselID)
	if errors.Is(err, ErrNoRecord) {
		// Vessel deleted underneath the operation; persist the
		// operation on its own.
		return s.Store.SaveOperation(ctx, op)
	}
	if err != nil {
		return err
	}
	if err := advanceVesselStatus(&v, models.VesselOperationsComplete); err != nil {
		return err
	}
	v.UpdatedAt = now
	return s.Store.SaveOperationAndVessel(ctx, op, v)
}
