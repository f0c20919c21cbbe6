package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidRegistration is returned when a vehicle registration is empty.
	ErrInvalidRegistration = errors.New("invalid vehicle registration")

	// ErrInvalidOdometer is returned when a corrected odometer value is negative.
	ErrInvalidOdometer = errors.New("invalid odometer value")

	// ErrVehicleBusy is returned when another write to the same vehicle's
	// ledger holds the lock. Retryable.
	ErrVehicleBusy = errors.New("another write to this vehicle is in progress")

	// ErrTripAlreadyDeleted is returned when deleting a trip that is already
	// soft-deleted.
	ErrTripAlreadyDeleted = errors.New("trip already deleted")

	// ErrTripNotDeleted is returned when restoring a trip that is active.
	ErrTripNotDeleted = errors.New("trip is not deleted")
)
