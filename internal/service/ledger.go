package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/models"
)

// LedgerService manages the assignment ledger: which user or equipment
// unit is attached to which operation, with an assigned -> active ->
// completed/cancelled lifecycle. Terminal entries are immutable.
type LedgerService struct {
	Store  Store
	Logger zerolog.Logger
}

func NewLedgerService(store Store, logger zerolog.Logger) *LedgerService {
	return &LedgerService{Store: store, Logger: logger}
}

type CreateAssignmentInput struct {
	OperationID    string     `json:"operation_id" binding:"required" validate:"required"`
	AssigneeID     string     `json:"assignee_id" binding:"required" validate:"required"`
	AssigneeKind   string     `json:"assignee_kind" binding:"required" validate:"required"`
	Role           string     `json:"role"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
}

func (s *LedgerService) Create(ctx context.Context, in CreateAssignmentInput) (models.Assignment, error) {
	if in.AssigneeKind != models.AssigneeUser && in.AssigneeKind != models.AssigneeEquipment {
		return models.Assignment{}, Validationf("assignee_kind must be %q or %q", models.AssigneeUser, models.AssigneeEquipment)
	}
	if strings.TrimSpace(in.AssigneeID) == "" {
		return models.Assignment{}, Validationf("assignee_id is required")
	}
	if in.ScheduledStart != nil && in.ScheduledEnd != nil && in.ScheduledEnd.Before(*in.ScheduledStart) {
		return models.Assignment{}, Validationf("scheduled_end precedes scheduled_start")
	}

	op, err := s.Store.GetOperation(ctx, in.OperationID)
	if errors.Is(err, ErrNoRecord) {
		return models.Assignment{}, NotFoundf("operation %s not found", in.OperationID)
	}
	if err != nil {
		return models.Assignment{}, err
	}
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return models.Assignment{}, InvalidStatef("operation %s is %s", in.OperationID, op.Status)
	}

	now := time.Now().UTC()
	a := models.Assignment{
		ID:             LedgerID(in.AssigneeKind, in.AssigneeID, now),
		OperationID:    op.OperationID,
		VesselID:       op.VesselID,
		AssigneeID:     strings.TrimSpace(in.AssigneeID),
		AssigneeKind:   in.AssigneeKind,
		Role:           in.Role,
		Status:         models.AssignmentAssigned,
		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.CreateAssignment(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	s.Logger.Info().
		Str("assignment_id", a.ID).
		Str("operation_id", a.OperationID).
		Str("kind", a.AssigneeKind).
		Msg("ledger entry created")
	return a, nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return models.Assignment{}, NotFoundf("assignment %s not found", id)
	}
	return a, err
}

func (s *LedgerService) ListByOperation(ctx context.Context, operationID string) ([]models.Assignment, error) {
	return s.Store.ListAssignments(ctx, operationID)
}

// Start flips assigned -> active and records the actual start.
func (s *LedgerService) Start(ctx context.Context, id string) (models.Assignment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentAssigned {
		return models.Assignment{}, InvalidStatef("assignment %s is %s, not assigned", id, a.Status)
	}
	now := time.Now().UTC()
	a.Status = models.AssignmentActive
	a.ActualStart = &now
	a.UpdatedAt = now
	if err := s.Store.SaveAssignment(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Complete flips active -> completed and records the actual end.
func (s *LedgerService) Complete(ctx context.Context, id string) (models.Assignment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentActive {
		return models.Assignment{}, InvalidStatef("assignment %s is %s, not active", id, a.Status)
	}
	now := time.Now().UTC()
	a.Status = models.AssignmentCompleted
	a.ActualEnd = &now
	a.UpdatedAt = now
	if err := s.Store.SaveAssignment(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Cancel is allowed from any non-terminal status.
func (s *LedgerService) Cancel(ctx context.Context, id string) (models.Assignment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status == models.AssignmentCompleted || a.Status == models.AssignmentCancelled {
		return models.Assignment{}, InvalidStatef("assignment %s is already %s", id, a.Status)
	}
	a.Status = models.AssignmentCancelled
	a.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveAssignment(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}
