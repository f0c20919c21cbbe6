package service

import (
	"fmt"
	"math"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
)

// MileageCalculator computes tank-to-tank fuel efficiency over the ordered
// subsequence of refueling trips. All methods are pure functions over a
// materialized, time-ordered ledger; callers load once, let the calculator
// mutate in memory, and commit as a batch.
type MileageCalculator struct {
	cfg config.ValidationConfig
}

// NewMileageCalculator creates a new MileageCalculator.
func NewMileageCalculator(cfg config.ValidationConfig) *MileageCalculator {
	return &MileageCalculator{cfg: cfg}
}

// ChainUpdate records one recomputed mileage value during a rebuild.
type ChainUpdate struct {
	TripID    string               `json:"trip_id"`
	TripLabel string               `json:"trip_label"`
	OldKmpl   *float64             `json:"old_kmpl"`
	NewKmpl   float64              `json:"new_kmpl"`
	Method    domain.MileageMethod `json:"method"`
}

// ChainIssue reports one refueling trip whose stored mileage has drifted
// from the expected tank-to-tank value.
type ChainIssue struct {
	TripID    string               `json:"trip_id"`
	TripLabel string               `json:"trip_label"`
	Stored    *float64             `json:"stored_kmpl"`
	Expected  float64              `json:"expected_kmpl"`
	Method    domain.MileageMethod `json:"method"`
}

// BreakClass grades an odometer gap between adjacent trips.
type BreakClass string

const (
	BreakNegative   BreakClass = "negative"
	BreakContinuous BreakClass = "continuous"
	BreakSmall      BreakClass = "small"
	BreakLarge      BreakClass = "large"
)

// OdometerBreak reports one adjacent trip pair whose odometer values do not
// connect, with a suggested remedial action.
type OdometerBreak struct {
	FromTripID      string     `json:"from_trip_id"`
	FromTripLabel   string     `json:"from_trip_label"`
	ToTripID        string     `json:"to_trip_id"`
	ToTripLabel     string     `json:"to_trip_label"`
	GapKm           int64      `json:"gap_km"`
	Class           BreakClass `json:"class"`
	SuggestedAction string     `json:"suggested_action"`
}

// Compute returns the fuel efficiency for one refueling trip against the
// nearest earlier non-deleted refueling trip in the ledger (the anchor).
// Without an anchor the simple method uses the trip's own distance.
// The second return value names the method used.
func (c *MileageCalculator) Compute(ledger []*domain.Trip, trip *domain.Trip) (float64, domain.MileageMethod) {
	anchor := c.Anchor(ledger, trip)
	if anchor != nil {
		return float64(trip.EndKm-anchor.EndKm) / trip.FuelQuantity, domain.MileageTankToTank
	}
	return float64(trip.EndKm-trip.StartKm) / trip.FuelQuantity, domain.MileageSimple
}

// Anchor returns the nearest earlier non-deleted refueling trip for the same
// chain, or nil when the trip is the vehicle's first refueling event.
func (c *MileageCalculator) Anchor(ledger []*domain.Trip, trip *domain.Trip) *domain.Trip {
	var anchor *domain.Trip
	for _, t := range ledger {
		if t.ID == trip.ID || t.Deleted() || !t.IsRefueling() {
			continue
		}
		if t.StartTime.Before(trip.StartTime) {
			if anchor == nil || t.StartTime.After(anchor.StartTime) {
				anchor = t
			}
		}
	}
	return anchor
}

// NeedsUpdate reports whether a stored value differs from the recomputed one
// beyond the configured epsilon. Recalculation on an already-correct trip is
// a no-op.
func (c *MileageCalculator) NeedsUpdate(stored *float64, computed float64) bool {
	if stored == nil {
		return true
	}
	return math.Abs(*stored-computed) >= c.cfg.KmplEpsilon
}

// RebuildChain walks the vehicle's non-deleted trips in time order, carrying
// the anchor forward, and recomputes every refueling trip's mileage in a
// single pass. Changed trips are mutated in place and reported; unchanged
// trips are left untouched. Used after bulk corrections or deletions.
func (c *MileageCalculator) RebuildChain(ledger []*domain.Trip) []ChainUpdate {
	var updates []ChainUpdate
	var anchor *domain.Trip

	for _, t := range ledger {
		if t.Deleted() || !t.IsRefueling() {
			continue
		}

		var kmpl float64
		var method domain.MileageMethod
		if anchor != nil {
			kmpl = float64(t.EndKm-anchor.EndKm) / t.FuelQuantity
			method = domain.MileageTankToTank
		} else {
			kmpl = float64(t.EndKm-t.StartKm) / t.FuelQuantity
			method = domain.MileageSimple
		}

		if c.NeedsUpdate(t.CalculatedKmpl, kmpl) {
			updates = append(updates, ChainUpdate{
				TripID:    t.ID,
				TripLabel: t.Label(),
				OldKmpl:   t.CalculatedKmpl,
				NewKmpl:   kmpl,
				Method:    method,
			})
			v := kmpl
			t.CalculatedKmpl = &v
		}

		anchor = t
	}

	return updates
}

// ValidateChain reports every refueling trip whose stored mileage drifts
// from the expected tank-to-tank computation beyond the epsilon. Each issue
// is repairable by a rebuild.
func (c *MileageCalculator) ValidateChain(ledger []*domain.Trip) []ChainIssue {
	var issues []ChainIssue
	var anchor *domain.Trip

	for _, t := range ledger {
		if t.Deleted() || !t.IsRefueling() {
			continue
		}

		var expected float64
		var method domain.MileageMethod
		if anchor != nil {
			expected = float64(t.EndKm-anchor.EndKm) / t.FuelQuantity
			method = domain.MileageTankToTank
		} else {
			expected = float64(t.EndKm-t.StartKm) / t.FuelQuantity
			method = domain.MileageSimple
		}

		if c.NeedsUpdate(t.CalculatedKmpl, expected) {
			issues = append(issues, ChainIssue{
				TripID:    t.ID,
				TripLabel: t.Label(),
				Stored:    t.CalculatedKmpl,
				Expected:  expected,
				Method:    method,
			})
		}

		anchor = t
	}

	return issues
}

// DetectBreaks finds adjacent non-deleted trip pairs whose odometer values
// do not connect and classifies each gap. The ledger must be ordered by
// start time.
func (c *MileageCalculator) DetectBreaks(ledger []*domain.Trip) []OdometerBreak {
	var breaks []OdometerBreak
	var prev *domain.Trip

	for _, t := range ledger {
		if t.Deleted() {
			continue
		}
		if prev != nil {
			gap := t.StartKm - prev.EndKm
			if gap != 0 {
				breaks = append(breaks, OdometerBreak{
					FromTripID:      prev.ID,
					FromTripLabel:   prev.Label(),
					ToTripID:        t.ID,
					ToTripLabel:     t.Label(),
					GapKm:           gap,
					Class:           c.classifyGap(gap),
					SuggestedAction: suggestedAction(c.classifyGap(gap), prev, t),
				})
			}
		}
		prev = t
	}

	return breaks
}

func (c *MileageCalculator) classifyGap(gap int64) BreakClass {
	switch {
	case gap < 0:
		return BreakNegative
	case gap == 0:
		return BreakContinuous
	case gap <= c.cfg.ModerateGapKm:
		return BreakSmall
	default:
		return BreakLarge
	}
}

func suggestedAction(class BreakClass, prev, next *domain.Trip) string {
	switch class {
	case BreakNegative:
		return fmt.Sprintf("correct the end odometer of trip %s or the start odometer of trip %s", prev.Label(), next.Label())
	case BreakSmall:
		return "likely unrecorded movement; no action needed unless it recurs"
	case BreakLarge:
		return fmt.Sprintf("check for a missing trip between %s and %s", prev.Label(), next.Label())
	default:
		return ""
	}
}
