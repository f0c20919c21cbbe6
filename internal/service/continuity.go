package service

import (
	"fmt"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
)

// ContinuityValidator checks that a candidate trip's starting odometer is
// consistent with the immediately preceding trip of the same vehicle, and
// that its end odometer does not run into the following trip. It operates
// on a materialized, time-ordered snapshot of the vehicle's ledger loaded
// by the caller.
type ContinuityValidator struct {
	cfg config.ValidationConfig
}

// NewContinuityValidator creates a new ContinuityValidator.
func NewContinuityValidator(cfg config.ValidationConfig) *ContinuityValidator {
	return &ContinuityValidator{cfg: cfg}
}

// Validate checks backward continuity. The ledger must be the vehicle's
// non-deleted trips ordered by start time; the candidate itself is skipped by
// ID so edits validate against the rest of the ledger.
//
// An odometer regression returns a ValidationError carrying the previous
// trip's identity and values. Gap bands otherwise grade as info or warning
// and never block.
func (v *ContinuityValidator) Validate(ledger []*domain.Trip, candidate *domain.Trip) ([]domain.Finding, *domain.ValidationError) {
	previous := previousTrip(ledger, candidate)
	if previous == nil {
		// First trip for the vehicle.
		return []domain.Finding{{
			Severity: domain.SeverityInfo,
			Code:     domain.FindingContinuityGap,
			Message:  fmt.Sprintf("trip %s is the first recorded trip for this vehicle", candidate.Label()),
		}}, nil
	}

	gap := candidate.StartKm - previous.EndKm

	if gap < 0 {
		return nil, &domain.ValidationError{
			Code:  domain.FindingOdometerRollback,
			Field: "start_km",
			Message: fmt.Sprintf(
				"trip %s: start odometer %d km is behind trip %s which ended at %d km",
				candidate.Label(), candidate.StartKm, previous.Label(), previous.EndKm,
			),
			RelatedTripID:    previous.ID,
			RelatedTripLabel: previous.Label(),
		}
	}

	var finding domain.Finding
	switch {
	case gap == 0:
		finding = domain.Finding{
			Severity: domain.SeverityInfo,
			Code:     domain.FindingContinuityGap,
			Message:  fmt.Sprintf("trip %s continues exactly from trip %s", candidate.Label(), previous.Label()),
		}
	case gap <= v.cfg.SmallGapKm:
		finding = domain.Finding{
			Severity: domain.SeverityInfo,
			Code:     domain.FindingContinuityGap,
			Message:  fmt.Sprintf("trip %s: %d km gap after trip %s", candidate.Label(), gap, previous.Label()),
		}
	case gap <= v.cfg.ModerateGapKm:
		finding = domain.Finding{
			Severity: domain.SeverityWarning,
			Code:     domain.FindingContinuityGap,
			Field:    "start_km",
			Message:  fmt.Sprintf("trip %s: moderate %d km gap after trip %s", candidate.Label(), gap, previous.Label()),
		}
	default:
		finding = domain.Finding{
			Severity: domain.SeverityWarning,
			Code:     domain.FindingContinuityGap,
			Field:    "start_km",
			Message:  fmt.Sprintf("trip %s: large %d km gap after trip %s, flagged for investigation", candidate.Label(), gap, previous.Label()),
		}
	}

	return []domain.Finding{finding}, nil
}

// ValidateForward checks that the candidate's end odometer does not overrun
// the next trip's start odometer. This guards every write, not only edits:
// an out-of-order insert between two existing trips can run into its
// successor just as easily. Writes that would require shifting later trips
// are rejected; the correction cascade exists for that.
func (v *ContinuityValidator) ValidateForward(ledger []*domain.Trip, candidate *domain.Trip) *domain.ValidationError {
	next := nextTrip(ledger, candidate)
	if next == nil {
		return nil
	}

	if next.StartKm < candidate.EndKm {
		return &domain.ValidationError{
			Code:  domain.FindingForwardContinuity,
			Field: "end_km",
			Message: fmt.Sprintf(
				"trip %s: end odometer %d km overruns trip %s which starts at %d km; use an odometer correction to shift later trips",
				candidate.Label(), candidate.EndKm, next.Label(), next.StartKm,
			),
			RelatedTripID:    next.ID,
			RelatedTripLabel: next.Label(),
		}
	}

	return nil
}

// previousTrip returns the latest non-deleted trip, other than the candidate,
// ending before the candidate starts.
func previousTrip(ledger []*domain.Trip, candidate *domain.Trip) *domain.Trip {
	var previous *domain.Trip
	for _, t := range ledger {
		if t.ID == candidate.ID || t.Deleted() {
			continue
		}
		if !t.EndTime.After(candidate.StartTime) {
			if previous == nil || t.EndTime.After(previous.EndTime) {
				previous = t
			}
		}
	}
	return previous
}

// nextTrip returns the earliest non-deleted trip, other than the candidate,
// starting after the candidate ends.
func nextTrip(ledger []*domain.Trip, candidate *domain.Trip) *domain.Trip {
	var next *domain.Trip
	for _, t := range ledger {
		if t.ID == candidate.ID || t.Deleted() {
			continue
		}
		if t.StartTime.After(candidate.EndTime) || t.StartTime.Equal(candidate.EndTime) {
			if next == nil || t.StartTime.Before(next.StartTime) {
				next = t
			}
		}
	}
	return next
}
