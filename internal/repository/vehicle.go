package repository

import (
	"context"

	"fleetledger/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// ListByOwner retrieves all vehicles belonging to an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error)
}
