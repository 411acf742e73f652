// Package postgres implements the dispatch stores on PostgreSQL using pgx.
// The atomic claim runs both status transitions inside one transaction and
// re-validates the preconditions through the UPDATE predicates themselves.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/storage"
)

// Store is a PostgreSQL implementation of storage.Store.
type Store struct {
	db *pgxpool.Pool
}

// New connects to the database described by dsn.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewWithPool wraps an existing connection pool.
func NewWithPool(pool *pgxpool.Pool) *Store { return &Store{db: pool} }

// Close releases the connection pool.
func (s *Store) Close() { s.db.Close() }

const deliveryColumns = `id, request_id, status, COALESCE(drone_id, ''), pickup_lat, pickup_lon, created_at, COALESCE(assigned_at, 'epoch'::timestamptz)`

func scanDelivery(row pgx.Row) (model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(&d.ID, &d.RequestID, &d.Status, &d.DroneID, &d.Pickup.Lat, &d.Pickup.Lon, &d.CreatedAt, &d.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Delivery{}, storage.ErrNotFound
		}
		return model.Delivery{}, fmt.Errorf("scan delivery: %w", err)
	}
	if d.AssignedAt.Unix() == 0 {
		d.AssignedAt = time.Time{}
	}
	return d, nil
}

// ListPending returns pending deliveries without a drone, oldest first.
func (s *Store) ListPending(ctx context.Context) ([]model.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE status = 'pending' AND drone_id IS NULL
		ORDER BY created_at ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []model.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending rows: %w", err)
	}
	return out, nil
}

// GetDelivery retrieves a single delivery by ID.
func (s *Store) GetDelivery(ctx context.Context, id string) (model.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	return scanDelivery(s.db.QueryRow(ctx, query, id))
}

// GetRequest retrieves the originating request of a delivery.
func (s *Store) GetRequest(ctx context.Context, id string) (model.DeliveryRequest, error) {
	query := `
		SELECT id, priority, hospital_id, supply_id, quantity, COALESCE(weight_kg, 0), created_at
		FROM delivery_requests
		WHERE id = $1`
	var r model.DeliveryRequest
	var priority string
	err := s.db.QueryRow(ctx, query, id).Scan(&r.ID, &priority, &r.HospitalID, &r.SupplyID, &r.Quantity, &r.WeightKg, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeliveryRequest{}, storage.ErrNotFound
		}
		return model.DeliveryRequest{}, fmt.Errorf("get request: %w", err)
	}
	r.Priority = model.ParsePriority(priority)
	return r, nil
}

const droneColumns = `id, status, battery_level, max_payload_kg, total_flight_hours, hub_id, active, COALESCE(current_delivery_id, '')`

func scanDrones(rows pgx.Rows) ([]model.Drone, error) {
	defer rows.Close()
	var out []model.Drone
	for rows.Next() {
		var d model.Drone
		if err := rows.Scan(&d.ID, &d.Status, &d.BatteryLevel, &d.MaxPayloadKg, &d.TotalFlightHours, &d.HubID, &d.Active, &d.CurrentDeliveryID); err != nil {
			return nil, fmt.Errorf("scan drone: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("drone rows: %w", err)
	}
	return out, nil
}

// ListByHub returns every drone stationed at the hub.
func (s *Store) ListByHub(ctx context.Context, hubID string) ([]model.Drone, error) {
	query := `SELECT ` + droneColumns + ` FROM drones WHERE hub_id = $1`
	rows, err := s.db.Query(ctx, query, hubID)
	if err != nil {
		return nil, fmt.Errorf("list drones by hub: %w", err)
	}
	return scanDrones(rows)
}

// CountAvailable returns the number of active, available drones.
func (s *Store) CountAvailable(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM drones WHERE status = 'available' AND active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count available drones: %w", err)
	}
	return n, nil
}

// ListAvailable returns every active, available drone.
func (s *Store) ListAvailable(ctx context.Context) ([]model.Drone, error) {
	query := `SELECT ` + droneColumns + ` FROM drones WHERE status = 'available' AND active`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available drones: %w", err)
	}
	return scanDrones(rows)
}

// ListOperational returns hubs that are active and operational.
func (s *Store) ListOperational(ctx context.Context) ([]model.Hub, error) {
	query := `SELECT id, name, lat, lon, active, operational FROM hubs WHERE active AND operational`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hubs: %w", err)
	}
	defer rows.Close()

	var out []model.Hub
	for rows.Next() {
		var h model.Hub
		if err := rows.Scan(&h.ID, &h.Name, &h.Location.Lat, &h.Location.Lon, &h.Active, &h.Operational); err != nil {
			return nil, fmt.Errorf("scan hub: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hub rows: %w", err)
	}
	return out, nil
}

// GetHospital retrieves one hospital by ID.
func (s *Store) GetHospital(ctx context.Context, id string) (model.Hospital, error) {
	query := `SELECT id, name, lat, lon, high_priority FROM hospitals WHERE id = $1`
	var h model.Hospital
	err := s.db.QueryRow(ctx, query, id).Scan(&h.ID, &h.Name, &h.Location.Lat, &h.Location.Lon, &h.HighPriority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Hospital{}, storage.ErrNotFound
		}
		return model.Hospital{}, fmt.Errorf("get hospital: %w", err)
	}
	return h, nil
}

// GetSupply retrieves one supply by ID.
func (s *Store) GetSupply(ctx context.Context, id string) (model.Supply, error) {
	query := `SELECT id, name, category FROM supplies WHERE id = $1`
	var sp model.Supply
	err := s.db.QueryRow(ctx, query, id).Scan(&sp.ID, &sp.Name, &sp.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Supply{}, storage.ErrNotFound
		}
		return model.Supply{}, fmt.Errorf("get supply: %w", err)
	}
	return sp, nil
}

// RecentByDrone returns maintenance records created at or after since.
func (s *Store) RecentByDrone(ctx context.Context, droneID string, since time.Time) ([]model.MaintenanceRecord, error) {
	query := `
		SELECT id, drone_id, severity, status, created_at
		FROM maintenance_records
		WHERE drone_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, droneID, since)
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	defer rows.Close()

	var out []model.MaintenanceRecord
	for rows.Next() {
		var r model.MaintenanceRecord
		if err := rows.Scan(&r.ID, &r.DroneID, &r.Severity, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan maintenance: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("maintenance rows: %w", err)
	}
	return out, nil
}

// Assign binds the drone to the delivery. Both UPDATE statements carry the
// status precondition in their WHERE clause, so a row moved by a concurrent
// transaction yields zero affected rows and the whole claim rolls back.
func (s *Store) Assign(ctx context.Context, deliveryID, droneID string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
		UPDATE deliveries
		SET status = 'assigned', drone_id = $2, assigned_at = $3
		WHERE id = $1 AND status = 'pending' AND drone_id IS NULL`,
		deliveryID, droneID, now)
	if err != nil {
		return fmt.Errorf("assign delivery: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := s.GetDelivery(ctx, deliveryID); errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrDeliveryNotPending
	}

	cmd, err = tx.Exec(ctx, `
		UPDATE drones
		SET status = 'assigned', current_delivery_id = $2
		WHERE id = $1 AND status = 'available' AND active`,
		droneID, deliveryID)
	if err != nil {
		return fmt.Errorf("assign drone: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return storage.ErrDroneUnavailable
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assign: %w", err)
	}
	return nil
}
