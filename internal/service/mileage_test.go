package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetledger/internal/domain"
)

func TestMileage_TankToTank(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeRefuelTrip("trip-a", 0, 2, 0, 100, 10)
	b := makeRefuelTrip("trip-b", 5, 4, 100, 250, 12)
	ledger := []*domain.Trip{a, b}

	// Trip B refuels 150 km after trip A's fill-up on 12 L.
	kmpl, method := calc.Compute(ledger, b)
	assert.Equal(t, domain.MileageTankToTank, method)
	assert.InDelta(t, 12.5, kmpl, 0.001)

	// Trip A has no earlier refueling, so it falls back to its own distance.
	kmpl, method = calc.Compute(ledger, a)
	assert.Equal(t, domain.MileageSimple, method)
	assert.InDelta(t, 10.0, kmpl, 0.001)
}

func TestMileage_AnchorSkipsDeletedAndNonRefueling(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeRefuelTrip("trip-a", 0, 2, 0, 100, 10)
	deleted := makeRefuelTrip("trip-b", 3, 2, 100, 200, 8)
	at := baseTime.Add(10 * time.Hour)
	deleted.DeletedAt = &at
	plain := makeTrip("trip-c", 6, 2, 200, 300)
	d := makeRefuelTrip("trip-d", 9, 2, 300, 400, 20)

	ledger := []*domain.Trip{a, deleted, plain, d}

	// The deleted fill-up and the plain trip are both invisible to the
	// chain; trip D anchors on trip A.
	anchor := calc.Anchor(ledger, d)
	require.NotNil(t, anchor)
	assert.Equal(t, "trip-a", anchor.ID)

	kmpl, method := calc.Compute(ledger, d)
	assert.Equal(t, domain.MileageTankToTank, method)
	assert.InDelta(t, 15.0, kmpl, 0.001)
}

func TestMileage_RebuildChain(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeRefuelTrip("trip-a", 0, 2, 0, 100, 10)
	b := makeRefuelTrip("trip-b", 5, 4, 100, 250, 12)
	c := makeRefuelTrip("trip-c", 12, 3, 250, 430, 15)
	ledger := []*domain.Trip{a, b, c}

	updates := calc.RebuildChain(ledger)

	require.Len(t, updates, 3)
	assert.InDelta(t, 10.0, kmplOf(a), 0.001)
	assert.InDelta(t, 12.5, kmplOf(b), 0.001)
	assert.InDelta(t, 12.0, kmplOf(c), 0.001)

	// A second rebuild over the same values is a no-op.
	assert.Empty(t, calc.RebuildChain(ledger))
}

func TestMileage_RebuildSkipsWithinEpsilon(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeRefuelTrip("trip-a", 0, 2, 0, 100, 10)
	stored := 10.005
	a.CalculatedKmpl = &stored

	// Within the configured epsilon the stored value stands.
	assert.Empty(t, calc.RebuildChain([]*domain.Trip{a}))
	assert.Equal(t, stored, kmplOf(a))
}

func TestMileage_ValidateChainReportsDrift(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeRefuelTrip("trip-a", 0, 2, 0, 100, 10)
	good := 10.0
	a.CalculatedKmpl = &good
	b := makeRefuelTrip("trip-b", 5, 4, 100, 250, 12)
	drifted := 9.0
	b.CalculatedKmpl = &drifted

	issues := calc.ValidateChain([]*domain.Trip{a, b})

	require.Len(t, issues, 1)
	assert.Equal(t, "trip-b", issues[0].TripID)
	assert.InDelta(t, 12.5, issues[0].Expected, 0.001)
	assert.Equal(t, domain.MileageTankToTank, issues[0].Method)
}

func TestMileage_DetectBreaks(t *testing.T) {
	t.Parallel()

	calc := NewMileageCalculator(testConfig())

	a := makeTrip("trip-a", 0, 2, 1000, 1100)
	continuous := makeTrip("trip-b", 3, 2, 1100, 1200)
	small := makeTrip("trip-c", 6, 2, 1230, 1300)
	large := makeTrip("trip-d", 9, 2, 1500, 1600)
	negative := makeTrip("trip-e", 12, 2, 1550, 1650)

	breaks := calc.DetectBreaks([]*domain.Trip{a, continuous, small, large, negative})

	require.Len(t, breaks, 3)

	assert.Equal(t, BreakSmall, breaks[0].Class)
	assert.Equal(t, int64(30), breaks[0].GapKm)

	assert.Equal(t, BreakLarge, breaks[1].Class)
	assert.Contains(t, breaks[1].SuggestedAction, "missing trip")

	assert.Equal(t, BreakNegative, breaks[2].Class)
	assert.Equal(t, int64(-50), breaks[2].GapKm)
	assert.Contains(t, breaks[2].SuggestedAction, "correct")
}
