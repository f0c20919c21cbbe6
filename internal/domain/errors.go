package domain

import "fmt"

// ValidationError blocks a write. It carries enough structured context for
// the caller to build a precise user-facing message: the offending field, the
// computed value, and the identity of the prior or conflicting trip.
type ValidationError struct {
	Code    FindingCode
	Field   string
	Message string

	// RelatedTripID and RelatedTripLabel identify the previous or conflicting
	// trip, when the rule involves one.
	RelatedTripID    string
	RelatedTripLabel string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError is returned when an operation targets a record outside
// the caller's ownership scope. Always fatal to the request.
type AuthorizationError struct {
	ActorID    string
	EntityType string
	EntityID   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s is not allowed to access %s %s", e.ActorID, e.EntityType, e.EntityID)
}

// IntegrityProtectionError reports that a hard delete would have corrupted
// the mileage chain and was converted to a soft delete instead. The conversion
// succeeds; this type exists so callers can tell the two outcomes apart.
type IntegrityProtectionError struct {
	TripID         string
	TripLabel      string
	DependentTrips []string // IDs of trips whose mileage depends on the anchor
}

func (e *IntegrityProtectionError) Error() string {
	return fmt.Sprintf("trip %s anchors the mileage of %d later trip(s); converted to soft delete", e.TripLabel, len(e.DependentTrips))
}

// CascadeTruncatedError reports that a correction cascade would touch more
// trips than the configured cap allows. The whole operation is rolled back.
type CascadeTruncatedError struct {
	TripID   string
	MaxTrips int
}

func (e *CascadeTruncatedError) Error() string {
	return fmt.Sprintf("correction of trip %s would cascade beyond the %d-trip limit", e.TripID, e.MaxTrips)
}
