package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetledger/internal/domain"
)

// ──────────────────────────────────────────────
// VEHICLE REPORTS
// ──────────────────────────────────────────────

func seedRefuelTrip(f *fixture, id string, start time.Time, durHours float64, startKm, endKm int64, fuelL float64) *domain.Trip {
	trip := f.seedTrip(id, start, durHours, startKm, endKm)
	trip.RefuelingDone = true
	trip.FuelQuantity = fuelL
	return trip
}

func TestChainReport_FlagsDriftedMileage(t *testing.T) {
	t.Parallel()

	f := newFixture()

	good := 10.0
	a := seedRefuelTrip(f, "trip-a", testDay, 2, 0, 100, 10)
	a.CalculatedKmpl = &good

	// Stored 9.0, but tank-to-tank against trip A gives (250-100)/12 = 12.5.
	drifted := 9.0
	b := seedRefuelTrip(f, "trip-b", testDay.Add(5*time.Hour), 4, 100, 250, 12)
	b.CalculatedKmpl = &drifted

	issues, err := f.trips.ChainReport(context.Background(), domain.Actor{UserID: "user-1"}, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].TripID != "trip-b" {
		t.Errorf("expected trip-b flagged, got %s", issues[0].TripID)
	}
	if issues[0].Expected < 12.49 || issues[0].Expected > 12.51 {
		t.Errorf("expected 12.5 km/L, got %f", issues[0].Expected)
	}
	if issues[0].Method != domain.MileageTankToTank {
		t.Errorf("expected tank-to-tank method, got %s", issues[0].Method)
	}
}

func TestChainReport_ServedFromCacheOnSecondRead(t *testing.T) {
	t.Parallel()

	f := newFixture()
	seedRefuelTrip(f, "trip-a", testDay, 2, 0, 100, 10)

	actor := domain.Actor{UserID: "user-1"}
	if _, err := f.trips.ChainReport(context.Background(), actor, "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cacheStore.SetChainReportCallCount != 1 {
		t.Fatalf("expected the report to be cached, got %d sets", f.cacheStore.SetChainReportCallCount)
	}

	// A second read must not recompute.
	if _, err := f.trips.ChainReport(context.Background(), actor, "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cacheStore.SetChainReportCallCount != 1 {
		t.Errorf("expected the second read to hit the cache, got %d sets", f.cacheStore.SetChainReportCallCount)
	}
}

func TestChainReport_RequiresOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.trips.ChainReport(context.Background(), domain.Actor{UserID: "intruder"}, "vehicle-1")

	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestBreakReport_ClassifiesGaps(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedTrip("trip-a", testDay, 2, 1000, 1100)
	f.seedTrip("trip-b", testDay.Add(4*time.Hour), 2, 1130, 1200)
	f.seedTrip("trip-c", testDay.Add(8*time.Hour), 2, 1500, 1600)

	breaks, err := f.trips.BreakReport(context.Background(), domain.Actor{UserID: "user-1"}, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(breaks) != 2 {
		t.Fatalf("expected 2 breaks, got %d", len(breaks))
	}
	if breaks[0].GapKm != 30 {
		t.Errorf("expected 30 km gap, got %d", breaks[0].GapKm)
	}
	if breaks[1].GapKm != 300 {
		t.Errorf("expected 300 km gap, got %d", breaks[1].GapKm)
	}
	if breaks[1].SuggestedAction == "" {
		t.Error("expected a suggested action for the large gap")
	}
}

func TestOverlapReport_FindsConflictingPairs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedTrip("trip-a", testDay, 3, 1000, 1100)
	f.seedTrip("trip-b", testDay.Add(2*time.Hour), 3, 1100, 1200)
	f.seedTrip("trip-c", testDay.Add(10*time.Hour), 2, 1200, 1300)

	pairs, err := f.trips.OverlapReport(context.Background(), domain.Actor{UserID: "user-1"}, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pairs) != 1 {
		t.Fatalf("expected 1 overlapping pair, got %d", len(pairs))
	}
	if pairs[0].TripID != "trip-a" || pairs[0].OtherID != "trip-b" {
		t.Errorf("expected trip-a/trip-b, got %s/%s", pairs[0].TripID, pairs[0].OtherID)
	}
}
