package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/quayline/terminal-backend/internal/models"
)

type MatchRequest struct {
	CargoType       string `json:"cargo_type"`
	Zone            string `json:"zone"`
	EquipmentNeeded string `json:"equipment_needed"`
	ShiftTime       string `json:"shift_time"` // "HH:MM", optional
}

type MatchResult struct {
	Best       *models.StevedoreTeam `json:"best"`
	ReasonCode string                `json:"reason_code,omitempty"`
	ReasonText string                `json:"reason_text,omitempty"`
	Stages     []MatchStage          `json:"stages"`
}

type MatchStage struct {
	Name       string                 `json:"name"`
	Candidates []models.StevedoreTeam `json:"candidates"`
}

// FindBestTeam runs the staged capability filter over the candidate teams
// and returns the highest-ranked survivor. Ranking is productivity
// descending, safety record descending, then team ID for determinism.
// Candidates must already be limited to available teams by the caller.
func FindBestTeam(teams []models.StevedoreTeam, req MatchRequest) (MatchResult, error) {
	if strings.TrimSpace(req.CargoType) == "" {
		return MatchResult{}, Validationf("cargo_type is required")
	}
	zone := strings.ToUpper(strings.TrimSpace(req.Zone))
	if zone != models.ZoneBRV && zone != models.ZoneZEE && zone != models.ZoneSOU {
		return MatchResult{}, Validationf("unknown zone %q", req.Zone)
	}
	shiftTime := -1
	if req.ShiftTime != "" {
		minutes, err := parseClock(req.ShiftTime)
		if err != nil {
			return MatchResult{}, err
		}
		shiftTime = minutes
	}

	result := MatchResult{}

	available := filterTeams(teams, func(t models.StevedoreTeam) bool {
		return t.Status == models.TeamAvailable
	})
	result.Stages = append(result.Stages, MatchStage{Name: "available_teams", Candidates: available})
	if len(available) == 0 {
		result.ReasonCode = "NO_AVAILABLE_TEAMS"
		result.ReasonText = "No teams available"
		return result, nil
	}

	afterZone := filterTeams(available, func(t models.StevedoreTeam) bool {
		return t.ZoneAssignment == nil || *t.ZoneAssignment == zone
	})
	result.Stages = append(result.Stages, MatchStage{Name: "zone_rule", Candidates: afterZone})
	if len(afterZone) == 0 {
		result.ReasonCode = "ZONE_MISMATCH"
		result.ReasonText = "No team assigned to zone " + zone
		return result, nil
	}

	afterCargo := filterTeams(afterZone, func(t models.StevedoreTeam) bool {
		return hasTag(t.CargoSpecialization, req.CargoType)
	})
	result.Stages = append(result.Stages, MatchStage{Name: "cargo_rule", Candidates: afterCargo})
	if len(afterCargo) == 0 {
		result.ReasonCode = "CARGO_MISMATCH"
		result.ReasonText = "No team specialized in " + req.CargoType
		return result, nil
	}

	afterEquipment := afterCargo
	if req.EquipmentNeeded != "" {
		afterEquipment = filterTeams(afterCargo, func(t models.StevedoreTeam) bool {
			return hasTag(t.CertifiedEquipment, req.EquipmentNeeded)
		})
	}
	result.Stages = append(result.Stages, MatchStage{Name: "equipment_rule", Candidates: afterEquipment})
	if len(afterEquipment) == 0 {
		result.ReasonCode = "EQUIPMENT_MISMATCH"
		result.ReasonText = "No team certified for " + req.EquipmentNeeded
		return result, nil
	}

	ranked := make([]models.StevedoreTeam, len(afterEquipment))
	copy(ranked, afterEquipment)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ProductivityRating != ranked[j].ProductivityRating {
			return ranked[i].ProductivityRating > ranked[j].ProductivityRating
		}
		if ranked[i].SafetyRecord != ranked[j].SafetyRecord {
			return ranked[i].SafetyRecord > ranked[j].SafetyRecord
		}
		return ranked[i].ID < ranked[j].ID
	})

	if shiftTime >= 0 {
		onShift := filterTeams(ranked, func(t models.StevedoreTeam) bool {
			return shiftCompatible(t, shiftTime)
		})
		result.Stages = append(result.Stages, MatchStage{Name: "shift_rule", Candidates: onShift})
		if len(onShift) == 0 {
			result.ReasonCode = "SHIFT_MISMATCH"
			result.ReasonText = "No team on shift at " + req.ShiftTime
			return result, nil
		}
		best := onShift[0]
		result.Best = &best
		return result, nil
	}

	best := ranked[0]
	result.Best = &best
	return result, nil
}

// shiftCompatible reports whether the team works at the given
// minutes-past-midnight instant. On-call teams and teams without shift
// hours always match; overnight windows (start > end) wrap midnight.
func shiftCompatible(t models.StevedoreTeam, minutes int) bool {
	if t.ShiftPattern == models.ShiftOnCall {
		return true
	}
	if t.ShiftStart == nil || t.ShiftEnd == nil {
		return true
	}
	start, err := parseClock(*t.ShiftStart)
	if err != nil {
		return true
	}
	end, err := parseClock(*t.ShiftEnd)
	if err != nil {
		return true
	}
	if start <= end {
		return minutes >= start && minutes <= end
	}
	return minutes >= start || minutes <= end
}

// parseClock converts "HH:MM" to minutes past midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, Validationf("invalid clock time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, Validationf("invalid clock time %q, expected HH:MM", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, Validationf("invalid clock time %q, expected HH:MM", s)
	}
	return h*60 + m, nil
}

func hasTag(tags []string, target string) bool {
	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

func filterTeams(teams []models.StevedoreTeam, keep func(models.StevedoreTeam) bool) []models.StevedoreTeam {
	out := make([]models.StevedoreTeam, 0, len(teams))
	for _, t := range teams {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
