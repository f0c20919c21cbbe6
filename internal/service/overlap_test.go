package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetledger/internal/domain"
)

func TestOverlap_RejectsCollision(t *testing.T) {
	t.Parallel()

	detector := NewOverlapDetector()

	existing := makeTrip("trip-a", 0, 3, 1000, 1100)
	existing.CreatedBy = "user-2"
	ledger := []*domain.Trip{existing}

	candidate := makeTrip("trip-b", 2, 3, 1100, 1200)
	vErr := detector.Validate(ledger, candidate, "vehicle")

	require.NotNil(t, vErr)
	assert.Equal(t, domain.FindingTimeOverlap, vErr.Code)
	assert.Equal(t, "trip-a", vErr.RelatedTripID)
	assert.Contains(t, vErr.Message, "vehicle")
	assert.Contains(t, vErr.Message, "user-2")
}

func TestOverlap_HalfOpenIntervals(t *testing.T) {
	t.Parallel()

	detector := NewOverlapDetector()

	existing := makeTrip("trip-a", 0, 3, 1000, 1100)
	ledger := []*domain.Trip{existing}

	// Back-to-back trips share an instant but do not overlap.
	touching := makeTrip("trip-b", 3, 2, 1100, 1180)
	assert.Nil(t, detector.Validate(ledger, touching, "vehicle"))

	// One minute earlier and they collide.
	colliding := makeTrip("trip-c", 3, 2, 1100, 1180)
	colliding.StartTime = colliding.StartTime.Add(-time.Minute)
	assert.NotNil(t, detector.Validate(ledger, colliding, "vehicle"))
}

func TestOverlap_SkipsDeletedAndSelf(t *testing.T) {
	t.Parallel()

	detector := NewOverlapDetector()

	deleted := makeTrip("trip-a", 0, 3, 1000, 1100)
	at := baseTime.Add(4 * time.Hour)
	deleted.DeletedAt = &at
	ledger := []*domain.Trip{deleted}

	candidate := makeTrip("trip-b", 1, 3, 1000, 1100)
	assert.Nil(t, detector.Validate(ledger, candidate, "vehicle"))

	// An edit does not collide with its own stored row.
	self := makeTrip("trip-b", 1, 3, 1000, 1100)
	assert.Nil(t, detector.Validate([]*domain.Trip{candidate}, self, "vehicle"))
}

func TestFindOverlaps_ClassifiesPairs(t *testing.T) {
	t.Parallel()

	detector := NewOverlapDetector()

	outer := makeTrip("trip-a", 0, 10, 1000, 1400)
	inner := makeTrip("trip-b", 2, 3, 1100, 1200)
	duplicate := makeTrip("trip-c", 0, 10, 1000, 1400)
	partial := makeTrip("trip-d", 8, 6, 1300, 1500)
	apart := makeTrip("trip-e", 20, 2, 1500, 1550)

	pairs := detector.FindOverlaps([]*domain.Trip{outer, inner, duplicate, partial, apart})

	kinds := make(map[string]OverlapKind)
	for _, p := range pairs {
		kinds[p.TripID+"/"+p.OtherID] = p.Kind
	}

	assert.Equal(t, OverlapContains, kinds["trip-a/trip-b"])
	assert.Equal(t, OverlapExactDuplicate, kinds["trip-a/trip-c"])
	assert.Equal(t, OverlapPartial, kinds["trip-a/trip-d"])
	assert.Equal(t, OverlapContainedWithin, kinds["trip-b/trip-c"])
	assert.NotContains(t, kinds, "trip-d/trip-e")
	assert.Len(t, pairs, 5)
}
