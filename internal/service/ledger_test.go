package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/terminal-backend/internal/models"
)

func newLedgerService(t *testing.T) (*fakeStore, *LedgerService) {
	t.Helper()
	store := newFakeStore()
	now := time.Now().UTC()
	store.operations["OP1"] = models.Operation{
		OperationID:   "OP1",
		VesselID:      "V1",
		OperationType: models.OpDischarge,
		CurrentStep:   3,
		Status:        models.OpStatusInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return store, NewLedgerService(store, zerolog.Nop())
}

func TestAssignmentLifecycle(t *testing.T) {
	_, svc := newLedgerService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAssignmentInput{
		OperationID:  "OP1",
		AssigneeID:   "crane-07",
		AssigneeKind: models.AssigneeEquipment,
		Role:         "discharge crane",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentAssigned, a.Status)
	assert.Equal(t, "V1", a.VesselID)
	assert.Contains(t, a.ID, "EA-")

	a, err = svc.Start(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentActive, a.Status)
	require.NotNil(t, a.ActualStart)

	a, err = svc.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, a.Status)
	require.NotNil(t, a.ActualEnd)

	// Terminal entries are immutable.
	_, err = svc.Start(ctx, a.ID)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
	_, err = svc.Complete(ctx, a.ID)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
	_, err = svc.Cancel(ctx, a.ID)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestAssignmentCancelFromAssigned(t *testing.T) {
	_, svc := newLedgerService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAssignmentInput{
		OperationID:  "OP1",
		AssigneeID:   "user-12",
		AssigneeKind: models.AssigneeUser,
	})
	require.NoError(t, err)

	a, err = svc.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCancelled, a.Status)
}

func TestAssignmentCreateValidation(t *testing.T) {
	store, svc := newLedgerService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAssignmentInput{OperationID: "OP1", AssigneeID: "x", AssigneeKind: "robot"})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.Create(ctx, CreateAssignmentInput{OperationID: "OP1", AssigneeID: " ", AssigneeKind: models.AssigneeUser})
	assert.Equal(t, CodeValidation, CodeOf(err))

	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err = svc.Create(ctx, CreateAssignmentInput{
		OperationID:    "OP1",
		AssigneeID:     "user-12",
		AssigneeKind:   models.AssigneeUser,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
	})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.Create(ctx, CreateAssignmentInput{OperationID: "OP9", AssigneeID: "x", AssigneeKind: models.AssigneeUser})
	assert.Equal(t, CodeNotFound, CodeOf(err))

	op := store.operations["OP1"]
	op.Status = models.OpStatusCompleted
	store.operations["OP1"] = op
	_, err = svc.Create(ctx, CreateAssignmentInput{OperationID: "OP1", AssigneeID: "x", AssigneeKind: models.AssigneeUser})
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestAssignmentListByOperation(t *testing.T) {
	_, svc := newLedgerService(t)
	ctx := context.Background()

	for _, assignee := range []string{"alfonso", "beatrix"} {
		if _, err := svc.Create(ctx, CreateAssignmentInput{
			OperationID:  "OP1",
			AssigneeID:   assignee,
			AssigneeKind: models.AssigneeUser,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, err := svc.ListByOperation(ctx, "OP1")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.ListByOperation(ctx, "OP2")
	require.NoError(t, err)
	assert.Empty(t, items)
}
