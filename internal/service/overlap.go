package service

import (
	"fmt"
	"time"

	"fleetledger/internal/domain"
)

// OverlapKind classifies how two trips' time intervals collide.
type OverlapKind string

const (
	OverlapExactDuplicate  OverlapKind = "exact_duplicate"
	OverlapContainedWithin OverlapKind = "contained_within"
	OverlapContains        OverlapKind = "contains"
	OverlapPartial         OverlapKind = "partial_overlap"
)

// OverlapPair is one conflicting pair reported by FindOverlaps.
type OverlapPair struct {
	TripID     string      `json:"trip_id"`
	TripLabel  string      `json:"trip_label"`
	OtherID    string      `json:"other_id"`
	OtherLabel string      `json:"other_label"`
	Kind       OverlapKind `json:"kind"`
	TripStart  time.Time   `json:"trip_start"`
	TripEnd    time.Time   `json:"trip_end"`
	OtherStart time.Time   `json:"other_start"`
	OtherEnd   time.Time   `json:"other_end"`
}

// OverlapDetector rejects candidate trips whose [StartTime, EndTime)
// interval collides with another non-deleted trip of the same vehicle or the
// same driver. It also powers the fleet-wide overlap audit report.
type OverlapDetector struct{}

// NewOverlapDetector creates a new OverlapDetector.
func NewOverlapDetector() *OverlapDetector {
	return &OverlapDetector{}
}

// Validate checks the candidate against one scope (the vehicle's ledger or
// the driver's ledger). The candidate itself is skipped by ID. The scope
// label ("vehicle" or "driver") appears in the error message.
func (d *OverlapDetector) Validate(ledger []*domain.Trip, candidate *domain.Trip, scope string) *domain.ValidationError {
	for _, t := range ledger {
		if t.ID == candidate.ID || t.Deleted() {
			continue
		}
		if candidate.Overlaps(t) {
			return &domain.ValidationError{
				Code:  domain.FindingTimeOverlap,
				Field: "start_time",
				Message: fmt.Sprintf(
					"trip %s overlaps trip %s (same %s, owned by %s) which runs %s to %s",
					candidate.Label(), t.Label(), scope, t.CreatedBy,
					t.StartTime.Format(time.RFC3339), t.EndTime.Format(time.RFC3339),
				),
				RelatedTripID:    t.ID,
				RelatedTripLabel: t.Label(),
			}
		}
	}

	return nil
}

// FindOverlaps scans a ledger for all overlapping pairs and classifies each.
// Read-only, used for fleet-wide audit reporting; each pair is reported once,
// from the earlier trip's perspective.
func (d *OverlapDetector) FindOverlaps(ledger []*domain.Trip) []OverlapPair {
	var pairs []OverlapPair

	for i := 0; i < len(ledger); i++ {
		a := ledger[i]
		if a.Deleted() {
			continue
		}
		for j := i + 1; j < len(ledger); j++ {
			b := ledger[j]
			if b.Deleted() || !a.Overlaps(b) {
				continue
			}
			pairs = append(pairs, OverlapPair{
				TripID:     a.ID,
				TripLabel:  a.Label(),
				OtherID:    b.ID,
				OtherLabel: b.Label(),
				Kind:       classifyOverlap(a, b),
				TripStart:  a.StartTime,
				TripEnd:    a.EndTime,
				OtherStart: b.StartTime,
				OtherEnd:   b.EndTime,
			})
		}
	}

	return pairs
}

func classifyOverlap(a, b *domain.Trip) OverlapKind {
	switch {
	case a.StartTime.Equal(b.StartTime) && a.EndTime.Equal(b.EndTime):
		return OverlapExactDuplicate
	case !a.StartTime.Before(b.StartTime) && !a.EndTime.After(b.EndTime):
		return OverlapContainedWithin
	case !b.StartTime.Before(a.StartTime) && !b.EndTime.After(a.EndTime):
		return OverlapContains
	default:
		return OverlapPartial
	}
}
