package health

import "context"

// DefaultHistoryLimit is the history page size when the caller supplies
// none.
const DefaultHistoryLimit = 20

// Repository is the durable, append-only health snapshot log. Snapshots
// are never updated or deleted.
type Repository interface {
	// Insert appends a snapshot to the log.
	Insert(ctx context.Context, record *Record) error

	// Latest returns the most recent snapshot for a vehicle.
	// Returns ErrNoHealthData if the vehicle has none.
	Latest(ctx context.Context, vehicleID string) (*Record, error)

	// History returns up to limit snapshots for a vehicle, oldest
	// first. A non-positive limit uses DefaultHistoryLimit.
	History(ctx context.Context, vehicleID string, limit int) ([]*Record, error)

	// ListVehicleIDs returns every vehicle id present in the log,
	// ascending.
	ListVehicleIDs(ctx context.Context) ([]string, error)
}
