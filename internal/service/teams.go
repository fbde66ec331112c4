package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/models"
)

var shiftPatterns = map[string]bool{
	models.ShiftDay:      true,
	models.ShiftNight:    true,
	models.ShiftRotating: true,
	models.ShiftOnCall:   true,
}

type TeamService struct {
	Store  Store
	Logger zerolog.Logger
}

func NewTeamService(store Store, logger zerolog.Logger) *TeamService {
	return &TeamService{Store: store, Logger: logger}
}

type CreateTeamInput struct {
	Name                string   `json:"name" binding:"required"`
	Leader              string   `json:"leader"`
	Supervisor          string   `json:"supervisor"`
	ZoneAssignment      *string  `json:"zone_assignment"`
	CargoSpecialization []string `json:"cargo_specialization"`
	CertifiedEquipment  []string `json:"certified_equipment"`
	ShiftPattern        string   `json:"shift_pattern"`
	ShiftStart          *string  `json:"shift_start"`
	ShiftEnd            *string  `json:"shift_end"`
	ProductivityRating  float64  `json:"productivity_rating"`
	SafetyRecord        float64  `json:"safety_record"`
}

func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (models.StevedoreTeam, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.StevedoreTeam{}, Validationf("team name is required")
	}
	pattern := in.ShiftPattern
	if pattern == "" {
		pattern = models.ShiftDay
	}
	if !shiftPatterns[pattern] {
		return models.StevedoreTeam{}, Validationf("unknown shift pattern %q", in.ShiftPattern)
	}
	if in.ZoneAssignment != nil {
		zone := strings.ToUpper(strings.TrimSpace(*in.ZoneAssignment))
		if zone != models.ZoneBRV && zone != models.ZoneZEE && zone != models.ZoneSOU {
			return models.StevedoreTeam{}, Validationf("unknown zone %q", *in.ZoneAssignment)
		}
		in.ZoneAssignment = &zone
	}
	if in.ProductivityRating < 0 || in.ProductivityRating > 10 {
		return models.StevedoreTeam{}, Validationf("productivity_rating must be within 0-10")
	}
	if in.SafetyRecord < 0 || in.SafetyRecord > 10 {
		return models.StevedoreTeam{}, Validationf("safety_record must be within 0-10")
	}
	for _, clock := range []*string{in.ShiftStart, in.ShiftEnd} {
		if clock != nil {
			if _, err := parseClock(*clock); err != nil {
				return models.StevedoreTeam{}, err
			}
		}
	}

	now := time.Now().UTC()
	t := models.StevedoreTeam{
		ID:                  TeamID(in.Name, now),
		Name:                strings.TrimSpace(in.Name),
		Leader:              in.Leader,
		Supervisor:          in.Supervisor,
		Status:              models.TeamAvailable,
		ZoneAssignment:      in.ZoneAssignment,
		CargoSpecialization: in.CargoSpecialization,
		CertifiedEquipment:  in.CertifiedEquipment,
		ShiftPattern:        pattern,
		ShiftStart:          in.ShiftStart,
		ShiftEnd:            in.ShiftEnd,
		ProductivityRating:  in.ProductivityRating,
		SafetyRecord:        in.SafetyRecord,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.Store.CreateTeam(ctx, t); err != nil {
		return models.StevedoreTeam{}, err
	}
	s.Logger.Info().Str("team_id", t.ID).Str("name", t.Name).Msg("team registered")
	return t, nil
}

func (s *TeamService) Get(ctx context.Context, id string) (models.StevedoreTeam, error) {
	t, err := s.Store.GetTeam(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return models.StevedoreTeam{}, NotFoundf("team %s not found", id)
	}
	return t, err
}

func (s *TeamService) List(ctx context.Context, status, zone string) ([]models.StevedoreTeam, error) {
	return s.Store.ListTeams(ctx, status, zone)
}

// Match runs the capability/shift filter over the current roster.
func (s *TeamService) Match(ctx context.Context, req MatchRequest) (MatchResult, error) {
	teams, err := s.Store.ListTeams(ctx, "", "")
	if err != nil {
		return MatchResult{}, err
	}
	return FindBestTeam(teams, req)
}

// AssignToOperation claims the team for the operation. The claim is a
// compare-and-set on the available status, so two concurrent assigns for
// the same team cannot both succeed.
func (s *TeamService) AssignToOperation(ctx context.Context, teamID, operationID string) (models.StevedoreTeam, error) {
	op, err := s.Store.GetOperation(ctx, operationID)
	if errors.Is(err, ErrNoRecord) {
		return models.StevedoreTeam{}, NotFoundf("operation %s not found", operationID)
	}
	if err != nil {
		return models.StevedoreTeam{}, err
	}
	if op.Status == models.OpStatusCompleted || op.Status == models.OpStatusCancelled {
		return models.StevedoreTeam{}, InvalidStatef("operation %s is %s", operationID, op.Status)
	}

	now := time.Now().UTC()
	description := fmt.Sprintf("%s operation %s", op.OperationType, op.OperationID)
	team, err := s.Store.ClaimTeam(ctx, teamID, description, now)
	if errors.Is(err, ErrNoRecord) {
		return models.StevedoreTeam{}, NotFoundf("team %s not found", teamID)
	}
	if errors.Is(err, ErrNotClaimed) {
		return models.StevedoreTeam{}, Conflictf("team %s is not available", teamID)
	}
	if err != nil {
		return models.StevedoreTeam{}, err
	}

	op.AssignedTeamID = &team.ID
	op.UpdatedAt = now
	if err := s.Store.SaveOperation(ctx, op); err != nil {
		return models.StevedoreTeam{}, err
	}

	s.Logger.Info().
		Str("team_id", teamID).
		Str("operation_id", operationID).
		Msg("team assigned")
	return team, nil
}

// CompleteAssignment returns the team to the available pool.
func (s *TeamService) CompleteAssignment(ctx context.Context, teamID string) (models.StevedoreTeam, error) {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return models.StevedoreTeam{}, err
	}
	if team.Status != models.TeamAssigned {
		return models.StevedoreTeam{}, InvalidStatef("team %s is %s, not assigned", teamID, team.Status)
	}
	team.Status = models.TeamAvailable
	team.CurrentAssignment = nil
	team.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveTeam(ctx, team); err != nil {
		return models.StevedoreTeam{}, err
	}
	s.Logger.Info().Str("team_id", teamID).Msg("team assignment completed")
	return team, nil
}
