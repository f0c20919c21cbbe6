package tests

import (
	"context"
	"errors"
	"testing"

	"fleetledger/internal/domain"
	"fleetledger/internal/redis"
	"fleetledger/internal/service"
)

// ──────────────────────────────────────────────
// VEHICLE REGISTRY
// ──────────────────────────────────────────────

func TestVehicle_RegisterAndList(t *testing.T) {
	t.Parallel()

	vehicleRepo := NewMockVehicleRepository()
	cacheStore := NewMockCacheStore()
	svc := service.NewVehicleService(vehicleRepo, cacheStore)

	actor := domain.Actor{UserID: "user-1"}
	vehicle, err := svc.Register(context.Background(), actor, service.RegisterVehicleRequest{
		Registration: "KA01-AB1234",
		Make:         "Tata",
		Model:        "Ace",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.ID == "" {
		t.Error("expected a generated vehicle ID")
	}
	if vehicle.OwnerID != "user-1" {
		t.Errorf("expected the actor as owner, got %s", vehicle.OwnerID)
	}

	vehicles, err := svc.List(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 1 {
		t.Errorf("expected 1 vehicle, got %d", len(vehicles))
	}

	// Another user sees nothing.
	vehicles, err = svc.List(context.Background(), domain.Actor{UserID: "user-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("expected no vehicles for another owner, got %d", len(vehicles))
	}
}

func TestVehicle_RegisterRequiresRegistration(t *testing.T) {
	t.Parallel()

	svc := service.NewVehicleService(NewMockVehicleRepository(), NewMockCacheStore())

	_, err := svc.Register(context.Background(), domain.Actor{UserID: "user-1"}, service.RegisterVehicleRequest{})
	if !errors.Is(err, service.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration, got %v", err)
	}
}

func TestVehicle_GetFillsCache(t *testing.T) {
	t.Parallel()

	vehicleRepo := NewMockVehicleRepository()
	cacheStore := NewMockCacheStore()
	svc := service.NewVehicleService(vehicleRepo, cacheStore)

	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:           "vehicle-1",
		Registration: "KA01-AB1234",
		OwnerID:      "user-1",
	})

	actor := domain.Actor{UserID: "user-1"}
	if _, err := svc.Get(context.Background(), actor, "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cacheStore.SetVehicleCallCount != 1 {
		t.Fatalf("expected the vehicle to be cached, got %d sets", cacheStore.SetVehicleCallCount)
	}

	// The second read is served from the cache.
	if _, err := svc.Get(context.Background(), actor, "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicleRepo.GetCallCount != 1 {
		t.Errorf("expected one repository read, got %d", vehicleRepo.GetCallCount)
	}
}

func TestVehicle_OwnershipEnforcedOnCacheHit(t *testing.T) {
	t.Parallel()

	vehicleRepo := NewMockVehicleRepository()
	cacheStore := NewMockCacheStore()
	svc := service.NewVehicleService(vehicleRepo, cacheStore)

	// Seed the cache directly, as a prior read by the owner would.
	_ = cacheStore.SetVehicle(context.Background(), &redis.CachedVehicle{
		ID:           "vehicle-1",
		Registration: "KA01-AB1234",
		OwnerID:      "user-1",
	})

	_, err := svc.Get(context.Background(), domain.Actor{UserID: "intruder"}, "vehicle-1")

	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}
