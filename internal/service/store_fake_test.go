package service

import (
	"context"
	"sync"
	"time"

	"github.com/quayline/terminal-backend/internal/models"
)

// fakeStore is an in-memory Store for tests. ClaimTeam honors the same
// compare-and-set contract as the pgx implementation.
type fakeStore struct {
	mu          sync.RWMutex
	vessels     map[string]models.Vessel
	berths      map[string]models.Berth
	operations  map[string]models.Operation
	teams       map[string]models.StevedoreTeam
	assignments map[string]models.Assignment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vessels:     make(map[string]models.Vessel),
		berths:      make(map[string]models.Berth),
		operations:  make(map[string]models.Operation),
		teams:       make(map[string]models.StevedoreTeam),
		assignments: make(map[string]models.Assignment),
	}
}

func (f *fakeStore) CreateVessel(_ context.Context, v models.Vessel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vessels[v.ID] = v
	return nil
}

func (f *fakeStore) GetVessel(_ context.Context, id string) (models.Vessel, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vessels[id]
	if !ok {
		return models.Vessel{}, ErrNoRecord
	}
	return v, nil
}

func (f *fakeStore) SaveVessel(_ context.Context, v models.Vessel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vessels[v.ID] = v
	return nil
}

func (f *fakeStore) ListVessels(_ context.Context, status string) ([]models.Vessel, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Vessel{}
	for _, v := range f.vessels {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBerth(_ context.Context, number string) (models.Berth, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.berths[number]
	if !ok {
		return models.Berth{}, ErrNoRecord
	}
	return b, nil
}

func (f *fakeStore) ListBerths(_ context.Context) ([]models.Berth, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Berth{}
	for _, b := range f.berths {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) CreateOperation(_ context.Context, op models.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[op.OperationID] = op
	return nil
}

func (f *fakeStore) GetOperation(_ context.Context, id string) (models.Operation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	op, ok := f.operations[id]
	if !ok {
		return models.Operation{}, ErrNoRecord
	}
	return op, nil
}

func (f *fakeStore) SaveOperation(_ context.Context, op models.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[op.OperationID] = op
	return nil
}

func (f *fakeStore) SaveOperationAndVessel(_ context.Context, op models.Operation, v models.Vessel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[op.OperationID] = op
	f.vessels[v.ID] = v
	return nil
}

func (f *fakeStore) ListOperations(_ context.Context, vesselID, status string) ([]models.Operation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Operation{}
	for _, op := range f.operations {
		if vesselID != "" && op.VesselID != vesselID {
			continue
		}
		if status != "" && op.Status != status {
			continue
		}
		out = append(out, op)
	}
	return out, nil
}

func (f *fakeStore) FindBerthHolder(_ context.Context, berthNumber string) (*models.Operation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, op := range f.operations {
		if op.Status == models.OpStatusInProgress && op.BerthAssigned != nil && *op.BerthAssigned == berthNumber {
			holder := op
			return &holder, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateTeam(_ context.Context, t models.StevedoreTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[t.ID] = t
	return nil
}

func (f *fakeStore) GetTeam(_ context.Context, id string) (models.StevedoreTeam, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.teams[id]
	if !ok {
		return models.StevedoreTeam{}, ErrNoRecord
	}
	return t, nil
}

func (f *fakeStore) SaveTeam(_ context.Context, t models.StevedoreTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[t.ID] = t
	return nil
}

func (f *fakeStore) ListTeams(_ context.Context, status, zone string) ([]models.StevedoreTeam, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.StevedoreTeam{}
	for _, t := range f.teams {
		if status != "" && t.Status != status {
			continue
		}
		if zone != "" && (t.ZoneAssignment == nil || *t.ZoneAssignment != zone) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ClaimTeam(_ context.Context, id, description string, at time.Time) (models.StevedoreTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return models.StevedoreTeam{}, ErrNoRecord
	}
	if t.Status != models.TeamAvailable {
		return models.StevedoreTeam{}, ErrNotClaimed
	}
	t.Status = models.TeamAssigned
	t.CurrentAssignment = &description
	t.LastAssignment = &at
	t.UpdatedAt = at
	f.teams[id] = t
	return t, nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, a models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID] = a
	return nil
}

func (f *fakeStore) GetAssignment(_ context.Context, id string) (models.Assignment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, ErrNoRecord
	}
	return a, nil
}

func (f *fakeStore) SaveAssignment(_ context.Context, a models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID] = a
	return nil
}

func (f *fakeStore) ListAssignments(_ context.Context, operationID string) ([]models.Assignment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Assignment{}
	for _, a := range f.assignments {
		if operationID == "" || a.OperationID == operationID {
			out = append(out, a)
		}
	}
	return out, nil
}
