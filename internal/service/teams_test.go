package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/terminal-backend/internal/models"
)

func seedTeamFixtures(t *testing.T) (*fakeStore, *TeamService) {
	t.Helper()
	store := newFakeStore()
	now := time.Now().UTC()
	store.teams["TEA-STV-1"] = models.StevedoreTeam{
		ID:                  "TEA-STV-1",
		Name:                "Team Alpha",
		Status:              models.TeamAvailable,
		CargoSpecialization: []string{"containers"},
		ShiftPattern:        models.ShiftDay,
		ProductivityRating:  8,
		SafetyRecord:        9,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, opID := range []string{"OP1", "OP2"} {
		store.operations[opID] = models.Operation{
			OperationID:   opID,
			VesselID:      "V1",
			OperationType: models.OpDischarge,
			CurrentStep:   3,
			Status:        models.OpStatusInProgress,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	return store, NewTeamService(store, zerolog.Nop())
}

func TestTeamCreateValidation(t *testing.T) {
	_, svc := seedTeamFixtures(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTeamInput{})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.Create(ctx, CreateTeamInput{Name: "Bravo", ShiftPattern: "weekly"})
	assert.Equal(t, CodeValidation, CodeOf(err))

	zone := "EAST"
	_, err = svc.Create(ctx, CreateTeamInput{Name: "Bravo", ZoneAssignment: &zone})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.Create(ctx, CreateTeamInput{Name: "Bravo", ProductivityRating: 11})
	assert.Equal(t, CodeValidation, CodeOf(err))

	start := "26:00"
	_, err = svc.Create(ctx, CreateTeamInput{Name: "Bravo", ShiftStart: &start})
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestTeamCreateNormalizesZone(t *testing.T) {
	_, svc := seedTeamFixtures(t)
	zone := "brv"
	team, err := svc.Create(context.Background(), CreateTeamInput{Name: "Bravo", ZoneAssignment: &zone})
	require.NoError(t, err)
	require.NotNil(t, team.ZoneAssignment)
	assert.Equal(t, models.ZoneBRV, *team.ZoneAssignment)
	assert.Equal(t, models.TeamAvailable, team.Status)
}

func TestTeamAssignClaimsOnce(t *testing.T) {
	store, svc := seedTeamFixtures(t)
	ctx := context.Background()

	team, err := svc.AssignToOperation(ctx, "TEA-STV-1", "OP1")
	require.NoError(t, err)
	assert.Equal(t, models.TeamAssigned, team.Status)
	require.NotNil(t, team.CurrentAssignment)
	require.NotNil(t, team.LastAssignment)

	op, _ := store.GetOperation(ctx, "OP1")
	require.NotNil(t, op.AssignedTeamID)
	assert.Equal(t, "TEA-STV-1", *op.AssignedTeamID)

	// Already claimed.
	_, err = svc.AssignToOperation(ctx, "TEA-STV-1", "OP2")
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestTeamAssignConcurrentExactlyOneWins(t *testing.T) {
	_, svc := seedTeamFixtures(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, opID := range []string{"OP1", "OP2"} {
		wg.Add(1)
		go func(i int, opID string) {
			defer wg.Done()
			_, errs[i] = svc.AssignToOperation(ctx, "TEA-STV-1", opID)
		}(i, opID)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case CodeOf(err) == CodeConflict:
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
}

func TestTeamAssignTargetsMustExist(t *testing.T) {
	_, svc := seedTeamFixtures(t)
	ctx := context.Background()

	_, err := svc.AssignToOperation(ctx, "NOPE", "OP1")
	assert.Equal(t, CodeNotFound, CodeOf(err))

	_, err = svc.AssignToOperation(ctx, "TEA-STV-1", "NOPE")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestTeamCompleteAssignmentResets(t *testing.T) {
	_, svc := seedTeamFixtures(t)
	ctx := context.Background()

	_, err := svc.AssignToOperation(ctx, "TEA-STV-1", "OP1")
	require.NoError(t, err)

	team, err := svc.CompleteAssignment(ctx, "TEA-STV-1")
	require.NoError(t, err)
	assert.Equal(t, models.TeamAvailable, team.Status)
	assert.Nil(t, team.CurrentAssignment)

	// Completing an unassigned team is an invalid state.
	_, err = svc.CompleteAssignment(ctx, "TEA-STV-1")
	assert.Equal(t, CodeInvalidState, CodeOf(err))

	// And the team can be claimed again.
	_, err = svc.AssignToOperation(ctx, "TEA-STV-1", "OP2")
	require.NoError(t, err)
}

func TestTeamMatchUsesRoster(t *testing.T) {
	_, svc := seedTeamFixtures(t)

	result, err := svc.Match(context.Background(), MatchRequest{CargoType: "containers", Zone: "BRV"})
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.Equal(t, "TEA-STV-1", result.Best.ID)
}
