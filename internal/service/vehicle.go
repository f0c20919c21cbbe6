package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetledger/internal/domain"
	"fleetledger/internal/redis"
	"fleetledger/internal/repository"
)

// VehicleService handles vehicle registration and lookup. Vehicles are
// read-mostly from the engine's perspective: they supply the ledger's
// ordering key and the registration used in messages.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	cacheStore  redis.CacheStoreInterface
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository, cacheStore redis.CacheStoreInterface) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, cacheStore: cacheStore}
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	Registration string
	Make         string
	Model        string
}

// Register creates a new vehicle owned by the actor.
func (s *VehicleService) Register(ctx context.Context, actor domain.Actor, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	if req.Registration == "" {
		return nil, ErrInvalidRegistration
	}

	vehicle := &domain.Vehicle{
		ID:           uuid.New().String(),
		Registration: req.Registration,
		Make:         req.Make,
		Model:        req.Model,
		OwnerID:      actor.UserID,
		CreatedAt:    time.Now(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// Get retrieves a vehicle, enforcing ownership. The cache is consulted first;
// a miss falls through to the database and refills the cache.
func (s *VehicleService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, ErrInvalidVehicleID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetVehicle(ctx, id)
		if err == nil && cached != nil {
			if cached.OwnerID != actor.UserID {
				return nil, &domain.AuthorizationError{ActorID: actor.UserID, EntityType: "vehicle", EntityID: id}
			}
			return &domain.Vehicle{ID: cached.ID, Registration: cached.Registration, OwnerID: cached.OwnerID}, nil
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.UserID {
		return nil, &domain.AuthorizationError{ActorID: actor.UserID, EntityType: "vehicle", EntityID: id}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetVehicle(ctx, &redis.CachedVehicle{
			ID:           vehicle.ID,
			Registration: vehicle.Registration,
			OwnerID:      vehicle.OwnerID,
		})
	}

	return vehicle, nil
}

// List returns the actor's vehicles.
func (s *VehicleService) List(ctx context.Context, actor domain.Actor) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.ListByOwner(ctx, actor.UserID)
}
