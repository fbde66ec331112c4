package service

import (
	"context"
	"errors"
	"time"

	"github.com/quayline/terminal-backend/internal/models"
)

// ErrNoRecord is returned by Store implementations when a lookup finds
// nothing. Services translate it into a NOT_FOUND domain error.
var ErrNoRecord = errors.New("no record")

// ErrNotClaimed is returned by ClaimTeam when the team exists but was not
// in the available status at claim time.
var ErrNotClaimed = errors.New("team not claimed")

// Store is the persistence surface consumed by the services. The pgx
// implementation lives in internal/db; tests use an in-memory fake.
type Store interface {
	CreateVessel(ctx context.Context, v models.Vessel) error
	GetVessel(ctx context.Context, id string) (models.Vessel, error)
	SaveVessel(ctx context.Context, v models.Vessel) error
	ListVessels(ctx context.Context, status string) ([]models.Vessel, error)

	GetBerth(ctx context.Context, number string) (models.Berth, error)
	ListBerths(ctx context.Context) ([]models.Berth, error)

	CreateOperation(ctx context.Context, op models.Operation) error
	GetOperation(ctx context.Context, id string) (models.Operation, error)
	SaveOperation(ctx context.Context, op models.Operation) error
	// SaveOperationAndVessel persists both records in one transaction.
	SaveOperationAndVessel(ctx context.Context, op models.Operation, v models.Vessel) error
	ListOperations(ctx context.Context, vesselID, status string) ([]models.Operation, error)
	// FindBerthHolder returns the in-progress operation occupying the
	// berth, or nil when the berth is free.
	FindBerthHolder(ctx context.Context, berthNumber string) (*models.Operation, error)

	CreateTeam(ctx context.Context, t models.StevedoreTeam) error
	GetTeam(ctx context.Context, id string) (models.StevedoreTeam, error)
	SaveTeam(ctx context.Context, t models.StevedoreTeam) error
	ListTeams(ctx context.Context, status, zone string) ([]models.StevedoreTeam, error)
	// ClaimTeam atomically flips a team from available to assigned,
	// recording the assignment description and timestamp. Returns
	// ErrNotClaimed when the team was not available.
	ClaimTeam(ctx context.Context, id, description string, at time.Time) (models.StevedoreTeam, error)

	CreateAssignment(ctx context.Context, a models.Assignment) error
	GetAssignment(ctx context.Context, id string) (models.Assignment, error)
	SaveAssignment(ctx context.Context, a models.Assignment) error
	ListAssignments(ctx context.Context, operationID string) ([]models.Assignment, error)
}
