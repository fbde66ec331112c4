package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayline/terminal-backend/internal/models"
)

var vesselStatusOrder = map[string]int{
	models.VesselExpected:           0,
	models.VesselArrived:            1,
	models.VesselBerthed:            2,
	models.VesselOperationsActive:   3,
	models.VesselOperationsComplete: 4,
	models.VesselDeparted:           5,
}

// advanceVesselStatus moves a vessel forward through its lifecycle.
// Transitions are one-directional; a no-op when the vessel is already at
// or past the target status.
func advanceVesselStatus(v *models.Vessel, to string) error {
	toIdx, ok := vesselStatusOrder[to]
	if !ok {
		return Validationf("unknown vessel status %q", to)
	}
	fromIdx := vesselStatusOrder[v.Status]
	if toIdx <= fromIdx {
		return nil
	}
	v.Status = to
	return nil
}

type VesselService struct {
	Store  Store
	Logger zerolog.Logger

	vesselLocks *keyedMutex
}

func NewVesselService(store Store, logger zerolog.Logger) *VesselService {
	return &VesselService{Store: store, Logger: logger, vesselLocks: newKeyedMutex()}
}

type CreateVesselInput struct {
	Name          string     `json:"name" binding:"required"`
	IMONumber     string     `json:"imo_number"`
	CallSign      string     `json:"call_sign"`
	VesselType    string     `json:"vessel_type"`
	LengthOverall float64    `json:"length_overall"`
	Draft         float64    `json:"draft"`
	BRVTarget     int        `json:"brv_target"`
	ZEETarget     int        `json:"zee_target"`
	SOUTarget     int        `json:"sou_target"`
	ETA           *time.Time `json:"eta"`
}

func (s *VesselService) Create(ctx context.Context, in CreateVesselInput) (models.Vessel, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Vessel{}, Validationf("vessel name is required")
	}
	if in.BRVTarget < 0 || in.ZEETarget < 0 || in.SOUTarget < 0 {
		return models.Vessel{}, Validationf("zone targets must be non-negative")
	}

	now := time.Now().UTC()
	v := models.Vessel{
		ID:            VesselID(in.Name, now),
		Name:          strings.TrimSpace(in.Name),
		IMONumber:     strings.TrimSpace(in.IMONumber),
		CallSign:      strings.TrimSpace(in.CallSign),
		VesselType:    in.VesselType,
		LengthOverall: in.LengthOverall,
		Draft:         in.Draft,
		Status:        models.VesselExpected,
		BRVTarget:     in.BRVTarget,
		ZEETarget:     in.ZEETarget,
		SOUTarget:     in.SOUTarget,
		ETA:           in.ETA,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	recomputeTotals(&v)

	if err := s.Store.CreateVessel(ctx, v); err != nil {
		return models.Vessel{}, err
	}
	s.Logger.Info().Str("vessel_id", v.ID).Str("name", v.Name).Msg("vessel registered")
	return v, nil
}

func (s *VesselService) Get(ctx context.Context, id string) (models.Vessel, error) {
	v, err := s.Store.GetVessel(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return models.Vessel{}, NotFoundf("vessel %s not found", id)
	}
	return v, err
}

func (s *VesselService) List(ctx context.Context, status string) ([]models.Vessel, error) {
	return s.Store.ListVessels(ctx, status)
}

// Arrive records the vessel's actual arrival at the terminal.
func (s *VesselService) Arrive(ctx context.Context, id string) (models.Vessel, error) {
	unlock := s.vesselLocks.Lock(id)
	defer unlock()

	v, err := s.Get(ctx, id)
	if err != nil {
		return models.Vessel{}, err
	}
	if v.Status != models.VesselExpected {
		return models.Vessel{}, InvalidStatef("vessel %s is %s, expected arrival only once", id, v.Status)
	}
	now := time.Now().UTC()
	v.Status = models.VesselArrived
	v.ArrivedAt = &now
	v.UpdatedAt = now
	if err := s.Store.SaveVessel(ctx, v); err != nil {
		return models.Vessel{}, err
	}
	s.Logger.Info().Str("vessel_id", id).Msg("vessel arrived")
	return v, nil
}

// Depart clears the berth reference and moves the vessel to departed.
// Requires operations to be complete.
func (s *VesselService) Depart(ctx context.Context, id string) (models.Vessel, error) {
	unlock := s.vesselLocks.Lock(id)
	defer unlock()

	v, err := s.Get(ctx, id)
	if err != nil {
		return models.Vessel{}, err
	}
	if v.Status != models.VesselOperationsComplete {
		return models.Vessel{}, InvalidStatef("vessel %s cannot depart while %s", id, v.Status)
	}
	now := time.Now().UTC()
	v.Status = models.VesselDeparted
	v.CurrentBerth = nil
	v.DepartedAt = &now
	v.UpdatedAt = now
	if err := s.Store.SaveVessel(ctx, v); err != nil {
		return models.Vessel{}, err
	}
	s.Logger.Info().Str("vessel_id", id).Msg("vessel departed")
	return v, nil
}

// UpdateDischarge applies a discharge increment to one zone under the
// per-vessel lock so concurrent updates cannot interleave.
func (s *VesselService) UpdateDischarge(ctx context.Context, id, zone string, units int) (ZoneProgress, error) {
	unlock := s.vesselLocks.Lock(id)
	defer unlock()

	v, err := s.Get(ctx, id)
	if err != nil {
		return ZoneProgress{}, err
	}
	zp, err := ApplyDischarge(&v, zone, units)
	if err != nil {
		return ZoneProgress{}, err
	}
	if err := advanceVesselStatus(&v, models.VesselOperationsActive); err != nil {
		return ZoneProgress{}, err
	}
	v.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveVessel(ctx, v); err != nil {
		return ZoneProgress{}, err
	}
	s.Logger.Info().
		Str("vessel_id", id).
		Str("zone", zone).
		Int("units", units).
		Int("total_discharged", v.TotalDischarged).
		Msg("discharge progress")
	return zp, nil
}

func (s *VesselService) ZoneProgress(ctx context.Context, id, zone string) (ZoneProgress, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return ZoneProgress{}, err
	}
	return ZoneProgressFor(v, zone)
}

func (s *VesselService) Progress(ctx context.Context, id string) (VesselProgress, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return VesselProgress{}, err
	}
	return VesselProgressFor(v), nil
}
