package health

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]*Record

	// failInsert forces Insert to fail, for testing the no-partial-write
	// ingestion contract.
	failInsert error
}

// NewInMemoryRepository creates a new in-memory health repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		snapshots: make(map[string][]*Record),
	}
}

// FailInserts makes every subsequent Insert return err. Pass nil to
// restore normal behaviour.
func (r *InMemoryRepository) FailInserts(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failInsert = err
}

// Insert appends a snapshot to the log.
func (r *InMemoryRepository) Insert(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failInsert != nil {
		return r.failInsert
	}

	cpy := *record
	r.snapshots[record.VehicleID] = append(r.snapshots[record.VehicleID], &cpy)
	return nil
}

// Latest returns the most recent snapshot for a vehicle.
func (r *InMemoryRepository) Latest(_ context.Context, vehicleID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.snapshots[vehicleID]
	if len(log) == 0 {
		return nil, ErrNoHealthData
	}

	cpy := *log[len(log)-1]
	return &cpy, nil
}

// History returns up to limit snapshots for a vehicle, oldest first.
func (r *InMemoryRepository) History(_ context.Context, vehicleID string, limit int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	log := r.snapshots[vehicleID]
	if len(log) > limit {
		log = log[len(log)-limit:]
	}

	records := make([]*Record, 0, len(log))
	for _, rec := range log {
		cpy := *rec
		records = append(records, &cpy)
	}
	return records, nil
}

// ListVehicleIDs returns every vehicle id present in the log, ascending.
func (r *InMemoryRepository) ListVehicleIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.snapshots))
	for id := range r.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
