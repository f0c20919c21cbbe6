package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleetledger/internal/domain"
	"fleetledger/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, vehicle_id, driver_id, created_by,
	start_time, end_time, start_km, end_km,
	refueling_done, fuel_quantity, calculated_kmpl,
	trip_type, notes,
	expense_fuel, expense_driver, expense_toll, expense_misc, expense_breakdown,
	serial_number, deleted_at, deletion_reason, deleted_by,
	created_at, updated_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (
			id, vehicle_id, driver_id, created_by,
			start_time, end_time, start_km, end_km,
			refueling_done, fuel_quantity, calculated_kmpl,
			trip_type, notes,
			expense_fuel, expense_driver, expense_toll, expense_misc, expense_breakdown,
			serial_number, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.VehicleID,
		nullString(trip.DriverID),
		trip.CreatedBy,
		trip.StartTime,
		trip.EndTime,
		trip.StartKm,
		trip.EndKm,
		trip.RefuelingDone,
		trip.FuelQuantity,
		nullFloat(trip.CalculatedKmpl),
		trip.TripType,
		trip.Notes,
		trip.Expenses.Fuel,
		trip.Expenses.Driver,
		trip.Expenses.Toll,
		trip.Expenses.Misc,
		trip.Expenses.Breakdown,
		trip.SerialNumber,
		trip.CreatedAt,
		trip.UpdatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID, including soft-deleted trips.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// ListByVehicle retrieves a vehicle's trips ordered by start time ascending.
func (r *TripRepository) ListByVehicle(ctx context.Context, vehicleID string, activeOnly bool) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE vehicle_id = $1`
	if activeOnly {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY start_time ASC`

	return r.list(ctx, query, vehicleID)
}

// ListByDriver retrieves a driver's trips ordered by start time ascending.
func (r *TripRepository) ListByDriver(ctx context.Context, driverID string, activeOnly bool) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1`
	if activeOnly {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY start_time ASC`

	return r.list(ctx, query, driverID)
}

func (r *TripRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update overwrites the mutable fields of an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, start_time = $2, end_time = $3,
		    start_km = $4, end_km = $5,
		    refueling_done = $6, fuel_quantity = $7, calculated_kmpl = $8,
		    trip_type = $9, notes = $10,
		    expense_fuel = $11, expense_driver = $12, expense_toll = $13,
		    expense_misc = $14, expense_breakdown = $15,
		    updated_at = $16
		WHERE id = $17
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.StartTime,
		trip.EndTime,
		trip.StartKm,
		trip.EndKm,
		trip.RefuelingDone,
		trip.FuelQuantity,
		nullFloat(trip.CalculatedKmpl),
		trip.TripType,
		trip.Notes,
		trip.Expenses.Fuel,
		trip.Expenses.Driver,
		trip.Expenses.Toll,
		trip.Expenses.Misc,
		trip.Expenses.Breakdown,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateOdometer rewrites only the odometer pair and derived mileage.
func (r *TripRepository) UpdateOdometer(ctx context.Context, id string, startKm, endKm int64, kmpl *float64) error {
	query := `
		UPDATE trips
		SET start_km = $1, end_km = $2, calculated_kmpl = $3, updated_at = now()
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, startKm, endKm, nullFloat(kmpl), id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// SoftDelete marks a trip inactive, preserving the row.
func (r *TripRepository) SoftDelete(ctx context.Context, id, reason, deletedBy string, at time.Time) error {
	query := `
		UPDATE trips
		SET deleted_at = $1, deletion_reason = $2, deleted_by = $3, updated_at = $1
		WHERE id = $4 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, at, reason, deletedBy, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// HardDelete removes a trip row permanently.
func (r *TripRepository) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM trips WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Restore clears the soft-delete flags.
func (r *TripRepository) Restore(ctx context.Context, id string) error {
	query := `
		UPDATE trips
		SET deleted_at = NULL, deletion_reason = '', deleted_by = '', updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (*domain.Trip, error) {
	var (
		trip           domain.Trip
		driverID       sql.NullString
		calculatedKmpl sql.NullFloat64
		deletedAt      sql.NullTime
		deletionReason sql.NullString
		deletedBy      sql.NullString
	)

	err := s.Scan(
		&trip.ID,
		&trip.VehicleID,
		&driverID,
		&trip.CreatedBy,
		&trip.StartTime,
		&trip.EndTime,
		&trip.StartKm,
		&trip.EndKm,
		&trip.RefuelingDone,
		&trip.FuelQuantity,
		&calculatedKmpl,
		&trip.TripType,
		&trip.Notes,
		&trip.Expenses.Fuel,
		&trip.Expenses.Driver,
		&trip.Expenses.Toll,
		&trip.Expenses.Misc,
		&trip.Expenses.Breakdown,
		&trip.SerialNumber,
		&deletedAt,
		&deletionReason,
		&deletedBy,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if calculatedKmpl.Valid {
		kmpl := calculatedKmpl.Float64
		trip.CalculatedKmpl = &kmpl
	}
	if deletedAt.Valid {
		at := deletedAt.Time
		trip.DeletedAt = &at
	}
	if deletionReason.Valid {
		trip.DeletionReason = deletionReason.String
	}
	if deletedBy.Valid {
		trip.DeletedBy = deletedBy.String
	}

	return &trip, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
