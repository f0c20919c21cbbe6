package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
	"fleetledger/internal/repository"
	"fleetledger/internal/service"
)

// ──────────────────────────────────────────────
// ODOMETER CORRECTION PREVIEW
// ──────────────────────────────────────────────

func newCascadeFixture() (*fixture, *service.CascadeService) {
	f := newFixture()
	audit := service.NewAuditService(f.auditRepo)
	mileage := service.NewMileageCalculator(f.cfg)
	cascade := service.NewCascadeService(nil, f.tripRepo, mileage, audit, f.lockStore, f.cacheStore, f.cfg)
	return f, cascade
}

func TestPreview_ShiftsLaterTripsWithoutPersisting(t *testing.T) {
	t.Parallel()

	f, cascade := newCascadeFixture()

	anchor := f.seedTrip("trip-a", testDay, 2, 0, 100)
	anchor.RefuelingDone = true
	anchor.FuelQuantity = 10
	f.seedTrip("trip-b", testDay.Add(5*time.Hour), 2, 100, 250)
	fill := f.seedTrip("trip-c", testDay.Add(9*time.Hour), 2, 250, 430)
	fill.RefuelingDone = true
	fill.FuelQuantity = 15

	plan, err := cascade.Preview(context.Background(), domain.Actor{UserID: "user-1"}, service.CorrectionRequest{
		TripID:   "trip-b",
		NewEndKm: 270,
		Reason:   "odometer misread",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.DeltaKm != 20 {
		t.Errorf("expected delta 20, got %d", plan.DeltaKm)
	}
	if len(plan.Steps) < 2 {
		t.Fatalf("expected the target and the shifted fill-up, got %d steps", len(plan.Steps))
	}
	if plan.Steps[0].TripID != "trip-b" || plan.Steps[0].NewEndKm != 270 {
		t.Errorf("expected the target step first, got %+v", plan.Steps[0])
	}

	// Preview never writes.
	if f.tripRepo.UpdateOdometerCallCount != 0 {
		t.Error("preview must not persist odometer changes")
	}
	if stored := f.tripRepo.GetTrip("trip-b"); stored.EndKm != 250 {
		t.Errorf("preview mutated the stored trip: end km %d", stored.EndKm)
	}
	if f.lockStore.AcquireCallCount != 0 {
		t.Error("preview must not take the vehicle lock")
	}
}

func TestPreview_TruncatedPlanIsStillViewable(t *testing.T) {
	t.Parallel()

	f, _ := newCascadeFixture()
	cfg := config.LoadValidation()
	cfg.CascadeMaxTrips = 1
	cascade := service.NewCascadeService(nil, f.tripRepo,
		service.NewMileageCalculator(cfg), service.NewAuditService(f.auditRepo),
		f.lockStore, f.cacheStore, cfg)

	f.seedTrip("trip-a", testDay, 1, 0, 100)
	f.seedTrip("trip-b", testDay.Add(2*time.Hour), 1, 100, 200)
	f.seedTrip("trip-c", testDay.Add(4*time.Hour), 1, 200, 300)

	plan, err := cascade.Preview(context.Background(), domain.Actor{UserID: "user-1"}, service.CorrectionRequest{
		TripID:   "trip-a",
		NewEndKm: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Truncated {
		t.Error("expected the plan to be marked truncated")
	}
	if len(plan.Steps) != 2 {
		t.Errorf("expected target plus one shifted trip, got %d steps", len(plan.Steps))
	}
}

func TestPreview_RequiresTripOwnership(t *testing.T) {
	t.Parallel()

	f, cascade := newCascadeFixture()
	f.seedTrip("trip-a", testDay, 2, 0, 100)

	_, err := cascade.Preview(context.Background(), domain.Actor{UserID: "intruder"}, service.CorrectionRequest{
		TripID:   "trip-a",
		NewEndKm: 150,
	})

	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestPreview_UnknownTrip(t *testing.T) {
	t.Parallel()

	_, cascade := newCascadeFixture()

	_, err := cascade.Preview(context.Background(), domain.Actor{UserID: "user-1"}, service.CorrectionRequest{
		TripID:   "missing",
		NewEndKm: 100,
	})

	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
