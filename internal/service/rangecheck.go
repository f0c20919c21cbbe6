package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
)

// RangeValidator performs the stateless, per-record bound checks: distance,
// duration, speed, fuel, and expenses. It never touches the store; it only
// grades the candidate trip against the configured thresholds.
type RangeValidator struct {
	cfg config.ValidationConfig
}

// NewRangeValidator creates a new RangeValidator.
func NewRangeValidator(cfg config.ValidationConfig) *RangeValidator {
	return &RangeValidator{cfg: cfg}
}

// Validate grades a candidate trip. Error findings block the write; warning
// and info findings are recorded to the audit trail. The edge-case category
// must already be classified.
func (v *RangeValidator) Validate(trip *domain.Trip, edgeCase domain.EdgeCase) []domain.Finding {
	var findings []domain.Finding

	findings = append(findings, v.checkDistance(trip, edgeCase)...)
	findings = append(findings, v.checkDuration(trip, edgeCase)...)
	findings = append(findings, v.checkSpeed(trip)...)
	findings = append(findings, v.checkFuel(trip, edgeCase)...)
	findings = append(findings, v.checkExpenses(trip)...)

	return findings
}

func (v *RangeValidator) checkDistance(trip *domain.Trip, edgeCase domain.EdgeCase) []domain.Finding {
	distance := trip.DistanceKm()

	if distance < 0 {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Code:     domain.FindingDistanceRange,
			Field:    "end_km",
			Message:  fmt.Sprintf("trip %s: end odometer %d is below start odometer %d", trip.Label(), trip.EndKm, trip.StartKm),
		}}
	}

	maxKm := v.cfg.MaxDistanceKm
	if edgeCase == domain.EdgeCaseLongHaul {
		maxKm = v.cfg.MaxLongHaulDistanceKm
	}
	if distance > maxKm {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Code:     domain.FindingDistanceRange,
			Field:    "end_km",
			Message:  fmt.Sprintf("trip %s: distance %d km exceeds the %d km ceiling", trip.Label(), distance, maxKm),
		}}
	}

	// Maintenance allows zero distance, test drives and dedicated fuel stops
	// allow short distances; only ordinary trips get the short-trip warning.
	shortExempt := edgeCase == domain.EdgeCaseMaintenance ||
		edgeCase == domain.EdgeCaseTestDrive ||
		edgeCase == domain.EdgeCaseRefueling
	if !shortExempt && distance < v.cfg.MinDistanceWarnKm {
		return []domain.Finding{{
			Severity: domain.SeverityWarning,
			Code:     domain.FindingDistanceRange,
			Field:    "end_km",
			Message:  fmt.Sprintf("trip %s: distance %d km is unusually short", trip.Label(), distance),
		}}
	}

	return nil
}

func (v *RangeValidator) checkDuration(trip *domain.Trip, edgeCase domain.EdgeCase) []domain.Finding {
	hours := trip.DurationHours()

	if hours <= 0 {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Code:     domain.FindingInvalidTimeOrder,
			Field:    "end_time",
			Message:  fmt.Sprintf("trip %s: end time must be after start time", trip.Label()),
		}}
	}

	maxHours := v.cfg.MaxDurationHours
	if edgeCase == domain.EdgeCaseLongHaul {
		maxHours = v.cfg.MaxLongHaulDurationHours
	}
	if hours > maxHours {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Code:     domain.FindingDurationRange,
			Field:    "end_time",
			Message:  fmt.Sprintf("trip %s: duration %.1f h exceeds the %.0f h ceiling", trip.Label(), hours, maxHours),
		}}
	}

	if hours > v.cfg.WarnDurationHours {
		return []domain.Finding{{
			Severity: domain.SeverityWarning,
			Code:     domain.FindingDurationRange,
			Field:    "end_time",
			Message:  fmt.Sprintf("trip %s: duration %.1f h is unusually long", trip.Label(), hours),
		}}
	}

	return nil
}

func (v *RangeValidator) checkSpeed(trip *domain.Trip) []domain.Finding {
	distance := trip.DistanceKm()
	hours := trip.DurationHours()

	// The speed check is meaningless for very short hops and undefined for
	// zero durations; both are handled by the other rules.
	if distance <= v.cfg.SpeedCheckMinDistanceKm || hours <= 0 {
		return nil
	}

	speed := float64(distance) / hours
	if speed > v.cfg.MaxAverageSpeedKmh {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Code:     domain.FindingAverageSpeed,
			Field:    "end_time",
			Message:  fmt.Sprintf("trip %s: average speed %.1f km/h exceeds the %.0f km/h ceiling", trip.Label(), speed, v.cfg.MaxAverageSpeedKmh),
		}}
	}

	return nil
}

func (v *RangeValidator) checkFuel(trip *domain.Trip, edgeCase domain.EdgeCase) []domain.Finding {
	if trip.FuelQuantity <= 0 {
		return nil
	}

	var findings []domain.Finding

	if trip.FuelQuantity > v.cfg.MaxFuelQuantityL {
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityError,
			Code:     domain.FindingFuelQuantity,
			Field:    "fuel_quantity",
			Message:  fmt.Sprintf("trip %s: fuel quantity %.1f L exceeds the %.0f L ceiling", trip.Label(), trip.FuelQuantity, v.cfg.MaxFuelQuantityL),
		})
	} else if trip.FuelQuantity > v.cfg.WarnFuelQuantityL {
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityWarning,
			Code:     domain.FindingFuelQuantity,
			Field:    "fuel_quantity",
			Message:  fmt.Sprintf("trip %s: fuel quantity %.1f L is unusually large", trip.Label(), trip.FuelQuantity),
		})
	}

	efficiency := float64(trip.DistanceKm()) / trip.FuelQuantity

	switch {
	case efficiency < v.cfg.MinKmpl:
		// A dedicated fuel stop covers almost no distance, so its implied
		// efficiency is always tiny; skip the error for that case.
		if edgeCase != domain.EdgeCaseRefueling && edgeCase != domain.EdgeCaseMaintenance {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Code:     domain.FindingFuelEfficiency,
				Field:    "fuel_quantity",
				Message:  fmt.Sprintf("trip %s: fuel efficiency %.2f km/L is below the %.0f km/L floor", trip.Label(), efficiency, v.cfg.MinKmpl),
			})
		}
	case efficiency > v.cfg.MaxKmpl:
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityError,
			Code:     domain.FindingFuelEfficiency,
			Field:    "fuel_quantity",
			Message:  fmt.Sprintf("trip %s: fuel efficiency %.2f km/L exceeds the %.0f km/L ceiling", trip.Label(), efficiency, v.cfg.MaxKmpl),
		})
	default:
		warnLow := v.cfg.WarnLowKmpl
		if edgeCase != domain.EdgeCaseNone {
			warnLow = v.cfg.WarnLowKmplEdge
		}
		if efficiency < warnLow {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityWarning,
				Code:     domain.FindingFuelEfficiency,
				Field:    "fuel_quantity",
				Message:  fmt.Sprintf("trip %s: fuel efficiency %.2f km/L is unusually low", trip.Label(), efficiency),
			})
		} else if efficiency > v.cfg.WarnHighKmpl {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityWarning,
				Code:     domain.FindingFuelEfficiency,
				Field:    "fuel_quantity",
				Message:  fmt.Sprintf("trip %s: fuel efficiency %.2f km/L is unusually high", trip.Label(), efficiency),
			})
		}
	}

	return findings
}

// expenseBound pairs one named expense with its ceilings.
type expenseBound struct {
	field  string
	amount decimal.Decimal
	max    float64
	warn   float64
}

func (v *RangeValidator) checkExpenses(trip *domain.Trip) []domain.Finding {
	bounds := []expenseBound{
		{"expense_fuel", trip.Expenses.Fuel, v.cfg.MaxFuelExpense, v.cfg.WarnFuelExpense},
		{"expense_driver", trip.Expenses.Driver, v.cfg.MaxDriverExpense, v.cfg.WarnDriverExpense},
		{"expense_toll", trip.Expenses.Toll, v.cfg.MaxTollExpense, v.cfg.WarnTollExpense},
		{"expense_misc", trip.Expenses.Misc, v.cfg.MaxMiscExpense, v.cfg.WarnMiscExpense},
		{"expense_breakdown", trip.Expenses.Breakdown, v.cfg.MaxBreakdownExpense, v.cfg.WarnBreakdownExpense},
	}

	var findings []domain.Finding
	for _, b := range bounds {
		switch {
		case b.amount.IsNegative():
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Code:     domain.FindingExpenseRange,
				Field:    b.field,
				Message:  fmt.Sprintf("trip %s: %s cannot be negative", trip.Label(), b.field),
			})
		case b.amount.GreaterThan(decimal.NewFromFloat(b.max)):
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Code:     domain.FindingExpenseRange,
				Field:    b.field,
				Message:  fmt.Sprintf("trip %s: %s %s exceeds the %.0f ceiling", trip.Label(), b.field, b.amount.StringFixed(2), b.max),
			})
		case b.amount.GreaterThan(decimal.NewFromFloat(b.warn)):
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityWarning,
				Code:     domain.FindingExpenseRange,
				Field:    b.field,
				Message:  fmt.Sprintf("trip %s: %s %s is unusually high", trip.Label(), b.field, b.amount.StringFixed(2)),
			})
		}
	}

	return findings
}
