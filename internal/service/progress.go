package service

import (
	"math"

	"github.com/quayline/terminal-backend/internal/models"
)

// ZoneProgress is the per-zone discharge snapshot.
type ZoneProgress struct {
	Zone       string  `json:"zone"`
	Target     int     `json:"target"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
	Remaining  int     `json:"remaining"`
}

// VesselProgress is the aggregate discharge snapshot across all zones.
type VesselProgress struct {
	VesselID        string         `json:"vessel_id"`
	Status          string         `json:"status"`
	Zones           []ZoneProgress `json:"zones"`
	TotalTarget     int            `json:"total_target"`
	TotalDischarged int            `json:"total_discharged"`
	Percentage      float64        `json:"percentage"`
}

// zoneCounters returns pointers into the vessel's target/completed pair
// for the given zone key.
func zoneCounters(v *models.Vessel, zone string) (target, completed *int, err error) {
	switch zone {
	case models.ZoneBRV:
		return &v.BRVTarget, &v.BRVCompleted, nil
	case models.ZoneZEE:
		return &v.ZEETarget, &v.ZEECompleted, nil
	case models.ZoneSOU:
		return &v.SOUTarget, &v.SOUCompleted, nil
	default:
		return nil, nil, Validationf("unknown zone %q", zone)
	}
}

func progressPercentage(completed, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(target)*10000) / 100
}

// ZoneProgressFor computes the snapshot for one zone. Percentage is 0
// when the zone has no target.
func ZoneProgressFor(v models.Vessel, zone string) (ZoneProgress, error) {
	target, completed, err := zoneCounters(&v, zone)
	if err != nil {
		return ZoneProgress{}, err
	}
	remaining := *target - *completed
	if remaining < 0 {
		remaining = 0
	}
	return ZoneProgress{
		Zone:       zone,
		Target:     *target,
		Completed:  *completed,
		Percentage: progressPercentage(*completed, *target),
		Remaining:  remaining,
	}, nil
}

// ApplyDischarge increments the zone's completed count by units, clamped
// at the zone target, then recomputes the vessel aggregate as the sum of
// the three zones. Callers must serialize per vessel.
func ApplyDischarge(v *models.Vessel, zone string, units int) (ZoneProgress, error) {
	if units < 0 {
		return ZoneProgress{}, Validationf("units must be non-negative, got %d", units)
	}
	target, completed, err := zoneCounters(v, zone)
	if err != nil {
		return ZoneProgress{}, err
	}
	*completed += units
	if *completed > *target {
		*completed = *target
	}
	recomputeTotals(v)
	return ZoneProgressFor(*v, zone)
}

// recomputeTotals restores the invariant that the vessel aggregates equal
// the sum of the per-zone values.
func recomputeTotals(v *models.Vessel) {
	v.TotalDischargeTarget = v.BRVTarget + v.ZEETarget + v.SOUTarget
	v.TotalDischarged = v.BRVCompleted + v.ZEECompleted + v.SOUCompleted
}

// VesselProgressFor builds the full per-zone plus aggregate snapshot.
func VesselProgressFor(v models.Vessel) VesselProgress {
	out := VesselProgress{
		VesselID:        v.ID,
		Status:          v.Status,
		TotalTarget:     v.TotalDischargeTarget,
		TotalDischarged: v.TotalDischarged,
		Percentage:      progressPercentage(v.TotalDischarged, v.TotalDischargeTarget),
	}
	for _, zone := range []string{models.ZoneBRV, models.ZoneZEE, models.ZoneSOU} {
		zp, _ := ZoneProgressFor(v, zone)
		out.Zones = append(out.Zones, zp)
	}
	return out
}
