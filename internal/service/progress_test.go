package service

import (
	"testing"

	"github.com/quayline/terminal-backend/internal/models"
)

func testVessel() models.Vessel {
	v := models.Vessel{
		ID:        "MAE-VSL-20250114080000",
		Name:      "Maersk Normandie",
		Status:    models.VesselBerthed,
		BRVTarget: 100,
		ZEETarget: 50,
		SOUTarget: 50,
	}
	recomputeTotals(&v)
	return v
}

func TestApplyDischargeAccumulates(t *testing.T) {
	v := testVessel()

	zp, err := ApplyDischarge(&v, models.ZoneBRV, 40)
	if err != nil {
		t.Fatalf("ApplyDischarge: %v", err)
	}
	if zp.Completed != 40 {
		t.Fatalf("expected 40 completed, got %d", zp.Completed)
	}
	if zp.Percentage != 40.0 {
		t.Fatalf("expected 40%% zone progress, got %v", zp.Percentage)
	}
	if v.TotalDischarged != 40 {
		t.Fatalf("expected aggregate 40, got %d", v.TotalDischarged)
	}
	if v.TotalDischargeTarget != 200 {
		t.Fatalf("expected aggregate target 200, got %d", v.TotalDischargeTarget)
	}
}

func TestApplyDischargeClampsAtTarget(t *testing.T) {
	v := testVessel()

	zp, err := ApplyDischarge(&v, models.ZoneZEE, 60)
	if err != nil {
		t.Fatalf("ApplyDischarge: %v", err)
	}
	if zp.Completed != 50 {
		t.Fatalf("expected completion clamped at target 50, got %d", zp.Completed)
	}
	if zp.Percentage != 100.0 {
		t.Fatalf("expected 100%% after clamp, got %v", zp.Percentage)
	}
	if zp.Remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", zp.Remaining)
	}
}

func TestAggregateIsSumOfZones(t *testing.T) {
	v := testVessel()

	if _, err := ApplyDischarge(&v, models.ZoneBRV, 40); err != nil {
		t.Fatalf("ApplyDischarge BRV: %v", err)
	}
	if _, err := ApplyDischarge(&v, models.ZoneZEE, 60); err != nil {
		t.Fatalf("ApplyDischarge ZEE: %v", err)
	}

	if v.TotalDischarged != 90 {
		t.Fatalf("expected aggregate 90 (40 + clamped 50), got %d", v.TotalDischarged)
	}

	p := VesselProgressFor(v)
	if p.Percentage != 45.0 {
		t.Fatalf("expected 45%% overall, got %v", p.Percentage)
	}
	if len(p.Zones) != 3 {
		t.Fatalf("expected 3 zone snapshots, got %d", len(p.Zones))
	}
	sum := 0
	for _, z := range p.Zones {
		sum += z.Completed
	}
	if sum != p.TotalDischarged {
		t.Fatalf("aggregate %d does not equal zone sum %d", p.TotalDischarged, sum)
	}
}

func TestApplyDischargeRejectsUnknownZone(t *testing.T) {
	v := testVessel()
	if _, err := ApplyDischarge(&v, "NORTH", 10); CodeOf(err) != CodeValidation {
		t.Fatalf("expected validation error for unknown zone, got %v", err)
	}
}

func TestApplyDischargeRejectsNegativeUnits(t *testing.T) {
	v := testVessel()
	if _, err := ApplyDischarge(&v, models.ZoneBRV, -5); CodeOf(err) != CodeValidation {
		t.Fatalf("expected validation error for negative units, got %v", err)
	}
	if v.BRVCompleted != 0 {
		t.Fatalf("rejected update must not mutate, got %d", v.BRVCompleted)
	}
}

func TestProgressPercentageRounding(t *testing.T) {
	cases := []struct {
		completed, target int
		want              float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{50, 50, 100},
	}
	for _, tc := range cases {
		if got := progressPercentage(tc.completed, tc.target); got != tc.want {
			t.Fatalf("progressPercentage(%d, %d) = %v, want %v", tc.completed, tc.target, got, tc.want)
		}
	}
}

func TestZoneProgressForZeroTarget(t *testing.T) {
	v := models.Vessel{ID: "v1", SOUTarget: 0}
	zp, err := ZoneProgressFor(v, models.ZoneSOU)
	if err != nil {
		t.Fatalf("ZoneProgressFor: %v", err)
	}
	if zp.Percentage != 0 {
		t.Fatalf("zero-target zone must report 0%%, got %v", zp.Percentage)
	}
}
