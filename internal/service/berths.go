package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/models"
)

type BerthService struct {
	Store  Store
	Logger zerolog.Logger

	// berthLocks serializes the check-then-set sequence per berth so two
	// concurrent assigns cannot both pass the conflict check.
	berthLocks *keyedMutex
}

func NewBerthService(store Store, logger zerolog.Logger) *BerthService {
	return &BerthService{Store: store, Logger: logger, berthLocks: newKeyedMutex()}
}

// BerthStatus is the per-berth snapshot for the status board.
type BerthStatus struct {
	Number    string  `json:"number"`
	BerthType string  `json:"berth_type"`
	Status    string  `json:"status"`
	Occupied  bool    `json:"occupied"`
	Vessel    *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"vessel,omitempty"`
	OperationID   *string `json:"operation_id,omitempty"`
	OperationType *string `json:"operation_type,omitempty"`
}

// Assign gives the berth to the operation. Fails with CONFLICT when
// another in-progress operation already holds the berth, or when the
// berth is under maintenance or closed. On success the operation moves to
// in_progress and the vessel to berthed, written as one transaction.
func (s *BerthService) Assign(ctx context.Context, operationID, berthNumber string) (models.Operation, error) {
	unlock := s.berthLocks.Lock(berthNumber)
	defer unlock()

	berth, err := s.Store.GetBerth(ctx, berthNumber)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("berth %s not found", berthNumber)
	}
	if err != nil {
		return models.Operation{}, err
	}
	if berth.Status != models.BerthActive {
		return models.Operation{}, Conflictf("berth %s is %s", berthNumber, berth.Status)
	}

	op, err := s.Store.GetOperation(ctx, operationID)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("operation %s not found", operationID)
	}
	if err != nil {
		return models.Operation{}, err
	}
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return models.Operation{}, InvalidStatef("operation %s is %s", operationID, op.Status)
	}

	holder, err := s.Store.FindBerthHolder(ctx, berthNumber)
	if err != nil {
		return models.Operation{}, err
	}
	if holder != nil && holder.OperationID != operationID {
		return models.Operation{}, Conflictf("berth %s is occupied by operation %s", berthNumber, holder.OperationID)
	}

	now := time.Now().UTC()
	op.BerthAssigned = &berth.Number
	op.BerthAssignedAt = &now
	op.Status = models.OpStatusInProgress
	op.UpdatedAt = now

	vessel, err := s.Store.GetVessel(ctx, op.VesselID)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("vessel %s not found", op.VesselID)
	}
	if err != nil {
		return models.Operation{}, err
	}
	if err := advanceVesselStatus(&vessel, models.VesselBerthed); err != nil {
		return models.Operation{}, err
	}
	vessel.CurrentBerth = &berth.Number
	vessel.UpdatedAt = now

	if err := s.Store.SaveOperationAndVessel(ctx, op, vessel); err != nil {
		return models.Operation{}, err
	}
	s.Logger.Info().
		Str("operation_id", operationID).
		Str("berth", berthNumber).
		Str("vessel_id", vessel.ID).
		Msg("berth assigned")
	return op, nil
}

// Release frees the operation's berth, allowing reassignment.
func (s *BerthService) Release(ctx context.Context, operationID string) (models.Operation, error) {
	op, err := s.Store.GetOperation(ctx, operationID)
	if errors.Is(err, ErrNoRecord) {
		return models.Operation{}, NotFoundf("operation %s not found", operationID)
	}
	if err != nil {
		return models.Operation{}, err
	}
	if op.BerthAssigned == nil {
		return models.Operation{}, InvalidStatef("operation %s holds no berth", operationID)
	}

	berthNumber := *op.BerthAssigned
	unlock := s.berthLocks.Lock(berthNumber)
	defer unlock()

	now := time.Now().UTC()
	op.BerthAssigned = nil
	op.BerthAssignedAt = nil
	op.UpdatedAt = now

	vessel, err := s.Store.GetVessel(ctx, op.VesselID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return models.Operation{}, err
	}
	if err == nil {
		vessel.CurrentBerth = nil
		vessel.UpdatedAt = now
		if err := s.Store.SaveOperationAndVessel(ctx, op, vessel); err != nil {
			return models.Operation{}, err
		}
	} else if err := s.Store.SaveOperation(ctx, op); err != nil {
		return models.Operation{}, err
	}

	s.Logger.Info().Str("operation_id", operationID).Str("berth", berthNumber).Msg("berth released")
	return op, nil
}

// Status returns the occupancy board for every configured berth.
func (s *BerthService) Status(ctx context.Context) ([]BerthStatus, error) {
	berths, err := s.Store.ListBerths(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BerthStatus, 0, len(berths))
	for _, b := range berths {
		entry := BerthStatus{Number: b.Number, BerthType: b.BerthType, Status: b.Status}
		holder, err := s.Store.FindBerthHolder(ctx, b.Number)
		if err != nil {
			return nil, err
		}
		if holder != nil {
			entry.Occupied = true
			entry.OperationID = &holder.OperationID
			entry.OperationType = &holder.OperationType
			if vessel, err := s.Store.GetVessel(ctx, holder.VesselID); err == nil {
				entry.Vessel = &struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				}{ID: vessel.ID, Name: vessel.Name}
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
