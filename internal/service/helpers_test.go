package service

import (
	"time"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
)

// Test ledgers are built relative to a fixed day so interval relationships
// stay readable.
var baseTime = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func testConfig() config.ValidationConfig {
	return config.LoadValidation()
}

// makeTrip builds a non-refueling trip starting the given number of hours
// after baseTime.
func makeTrip(id string, startHours float64, durationHours float64, startKm, endKm int64) *domain.Trip {
	start := baseTime.Add(time.Duration(startHours * float64(time.Hour)))
	return &domain.Trip{
		ID:        id,
		VehicleID: "vehicle-1",
		DriverID:  "driver-1",
		CreatedBy: "user-1",
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationHours * float64(time.Hour))),
		StartKm:   startKm,
		EndKm:     endKm,
	}
}

// makeRefuelTrip builds a refueling trip with the given fuel quantity.
func makeRefuelTrip(id string, startHours float64, durationHours float64, startKm, endKm int64, fuelL float64) *domain.Trip {
	trip := makeTrip(id, startHours, durationHours, startKm, endKm)
	trip.RefuelingDone = true
	trip.FuelQuantity = fuelL
	return trip
}

func kmplOf(trip *domain.Trip) float64 {
	if trip.CalculatedKmpl == nil {
		return 0
	}
	return *trip.CalculatedKmpl
}
