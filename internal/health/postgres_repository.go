package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurafleet/aurafleet/internal/anomaly"
)

// PostgresRepository is a PostgreSQL implementation of Repository backed by
// the health_snapshots table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL health repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert appends a snapshot to the log as a single statement.
func (r *PostgresRepository) Insert(ctx context.Context, record *Record) error {
	components, err := json.Marshal(record.Components)
	if err != nil {
		return fmt.Errorf("encoding subsystems: %w", err)
	}

	var snapshot []byte
	if record.RawSensors != nil {
		snapshot, err = json.Marshal(record.RawSensors)
		if err != nil {
			return fmt.Errorf("encoding sensor snapshot: %w", err)
		}
	}

	query := `
		INSERT INTO health_snapshots (
			vehicle_id, anomaly_score, subsystems, sensor_snapshot,
			learned_score, learned_label, rule_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var label *string
	if record.LearnedLabel != "" {
		l := string(record.LearnedLabel)
		label = &l
	}

	_, err = r.pool.Exec(ctx, query,
		record.VehicleID,
		record.Score,
		components,
		snapshot,
		record.LearnedScore,
		label,
		record.RuleScore,
		record.CreatedAt,
	)
	return err
}

// Latest returns the most recent snapshot for a vehicle.
func (r *PostgresRepository) Latest(ctx context.Context, vehicleID string) (*Record, error) {
	query := selectColumns + `
		WHERE vehicle_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	record, err := scanRecord(r.pool.QueryRow(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoHealthData
		}
		return nil, err
	}
	return record, nil
}

// History returns up to limit snapshots for a vehicle, oldest first.
func (r *PostgresRepository) History(ctx context.Context, vehicleID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	// Fetch newest-first so LIMIT keeps the most recent snapshots, then
	// reverse so callers see them oldest-first.
	query := selectColumns + `
		WHERE vehicle_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

// ListVehicleIDs returns every vehicle id present in the log, ascending.
func (r *PostgresRepository) ListVehicleIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT vehicle_id
		FROM health_snapshots
		ORDER BY vehicle_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const selectColumns = `
	SELECT
		vehicle_id, anomaly_score, subsystems, sensor_snapshot,
		learned_score, learned_label, rule_score, created_at
	FROM health_snapshots
`

// scanRecord scans one snapshot row, decoding the JSONB columns.
func scanRecord(row pgx.Row) (*Record, error) {
	var (
		record     Record
		components []byte
		snapshot   []byte
		label      *string
	)

	err := row.Scan(
		&record.VehicleID,
		&record.Score,
		&components,
		&snapshot,
		&record.LearnedScore,
		&label,
		&record.RuleScore,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(components, &record.Components); err != nil {
		return nil, fmt.Errorf("decoding subsystems: %w", err)
	}
	if snapshot != nil {
		if err := json.Unmarshal(snapshot, &record.RawSensors); err != nil {
			return nil, fmt.Errorf("decoding sensor snapshot: %w", err)
		}
	}
	if label != nil {
		record.LearnedLabel = anomaly.Label(*label)
	}

	return &record, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
