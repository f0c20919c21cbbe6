package repository

import (
	"context"
	"time"

	"fleetledger/internal/domain"
)

// TripRepository defines the persistence operations for the trip ledger.
// All validation lives in the service layer; implementations only store and
// retrieve.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID, including soft-deleted trips.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// ListByVehicle retrieves a vehicle's trips ordered by start time
	// ascending. When activeOnly is true, soft-deleted trips are excluded.
	ListByVehicle(ctx context.Context, vehicleID string, activeOnly bool) ([]*domain.Trip, error)

	// ListByDriver retrieves a driver's trips ordered by start time
	// ascending. When activeOnly is true, soft-deleted trips are excluded.
	ListByDriver(ctx context.Context, driverID string, activeOnly bool) ([]*domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// UpdateOdometer rewrites only the odometer pair and derived mileage of a
	// trip. Used by the correction cascade so a shift cannot clobber
	// unrelated fields edited concurrently.
	UpdateOdometer(ctx context.Context, id string, startKm, endKm int64, kmpl *float64) error

	// SoftDelete marks a trip inactive, preserving the row.
	SoftDelete(ctx context.Context, id, reason, deletedBy string, at time.Time) error

	// HardDelete removes a trip row permanently.
	HardDelete(ctx context.Context, id string) error

	// Restore clears the soft-delete flags, re-admitting the trip into the
	// active ledger.
	Restore(ctx context.Context, id string) error
}
