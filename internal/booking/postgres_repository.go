package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository backed by
// the bookings table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL booking repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new booking as a single statement.
func (r *PostgresRepository) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (
			id, vehicle_id, slot_start, slot_end, center_id, status,
			created_at, confirmed_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.VehicleID,
		booking.SlotStart,
		booking.SlotEnd,
		booking.CenterID,
		booking.Status,
		booking.CreatedAt,
		booking.ConfirmedAt,
		booking.CompletedAt,
	)
	return err
}

// ConfirmedForVehicle returns every confirmed booking for a vehicle,
// ascending by slot start.
func (r *PostgresRepository) ConfirmedForVehicle(ctx context.Context, vehicleID string) ([]*Booking, error) {
	query := selectColumns + `
		WHERE vehicle_id = $1 AND status = $2
		ORDER BY slot_start
	`
	return r.queryBookings(ctx, query, vehicleID, StatusConfirmed)
}

// Upcoming returns confirmed future bookings across the fleet, ascending
// by slot start.
func (r *PostgresRepository) Upcoming(ctx context.Context, after time.Time, limit int) ([]*Booking, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := selectColumns + `
		WHERE status = $1 AND slot_start >= $2
		ORDER BY slot_start
		LIMIT $3
	`
	return r.queryBookings(ctx, query, StatusConfirmed, after, limit)
}

// ForVehicle returns a vehicle's bookings, newest slot first.
func (r *PostgresRepository) ForVehicle(ctx context.Context, vehicleID string, limit int) ([]*Booking, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := selectColumns + `
		WHERE vehicle_id = $1
		ORDER BY slot_start DESC
		LIMIT $2
	`
	return r.queryBookings(ctx, query, vehicleID, limit)
}

const selectColumns = `
	SELECT
		id, vehicle_id, slot_start, slot_end, center_id, status,
		created_at, confirmed_at, completed_at
	FROM bookings
`

func (r *PostgresRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.VehicleID,
		&b.SlotStart,
		&b.SlotEnd,
		&b.CenterID,
		&b.Status,
		&b.CreatedAt,
		&b.ConfirmedAt,
		&b.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
