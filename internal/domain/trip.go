package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EdgeCase classifies a trip into one of the special categories that relax
// the standard range checks. Classification happens once per candidate trip,
// before validation, so downstream rules never re-match strings.
type EdgeCase string

const (
	EdgeCaseNone        EdgeCase = "NONE"
	EdgeCaseMaintenance EdgeCase = "MAINTENANCE" // zero distance allowed
	EdgeCaseTestDrive   EdgeCase = "TEST_DRIVE"  // short distance allowed
	EdgeCaseRefueling   EdgeCase = "REFUELING"   // short distance with fuel recorded
	EdgeCaseLongHaul    EdgeCase = "LONG_HAUL"   // relaxed distance/duration ceilings
)

// MileageMethod records how a refueling trip's fuel efficiency was derived.
type MileageMethod string

const (
	// MileageTankToTank divides the distance since the previous refueling
	// trip's end odometer by the fuel added on this trip.
	MileageTankToTank MileageMethod = "TANK_TO_TANK"

	// MileageSimple is used for the first refueling trip of a vehicle, when
	// no earlier anchor exists: own distance divided by fuel added.
	MileageSimple MileageMethod = "SIMPLE"
)

// Expenses holds the named monetary fields attached to a trip.
// All amounts are non-negative.
type Expenses struct {
	Fuel      decimal.Decimal
	Driver    decimal.Decimal
	Toll      decimal.Decimal
	Misc      decimal.Decimal
	Breakdown decimal.Decimal
}

// Trip is the central entity of the ledger: one movement of one vehicle,
// bounded by a time interval and a pair of odometer readings.
type Trip struct {
	ID        string
	VehicleID string
	DriverID  string // optional; empty means no driver recorded
	CreatedBy string // owner, used for authorization and audit attribution

	StartTime time.Time
	EndTime   time.Time

	StartKm int64
	EndKm   int64

	RefuelingDone  bool
	FuelQuantity   float64  // liters added on this trip; meaningful when > 0
	CalculatedKmpl *float64 // derived by the mileage chain; nil until computed

	TripType string // free-form tag; feeds edge-case classification
	Notes    string

	Expenses Expenses

	SerialNumber string // human-readable identifier, used only in messages

	DeletedAt      *time.Time
	DeletionReason string
	DeletedBy      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the trip has been soft-deleted.
func (t *Trip) Deleted() bool {
	return t.DeletedAt != nil
}

// DistanceKm returns the odometer distance covered by the trip.
func (t *Trip) DistanceKm() int64 {
	return t.EndKm - t.StartKm
}

// DurationHours returns the trip duration in hours.
func (t *Trip) DurationHours() float64 {
	return t.EndTime.Sub(t.StartTime).Hours()
}

// IsRefueling reports whether the trip participates in the mileage chain.
func (t *Trip) IsRefueling() bool {
	return t.RefuelingDone && t.FuelQuantity > 0
}

// Label returns the identifier used in user-facing messages: the serial
// number when present, otherwise the raw ID.
func (t *Trip) Label() string {
	if t.SerialNumber != "" {
		return t.SerialNumber
	}
	return t.ID
}

// Overlaps reports whether two trips occupy overlapping [StartTime, EndTime)
// intervals.
func (t *Trip) Overlaps(other *Trip) bool {
	return t.StartTime.Before(other.EndTime) && other.StartTime.Before(t.EndTime)
}
