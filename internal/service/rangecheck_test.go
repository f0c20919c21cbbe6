package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetledger/internal/domain"
)

func TestRangeValidator_CleanTrip(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	trip := makeTrip("trip-1", 0, 2, 1000, 1100)
	findings := validator.Validate(trip, domain.EdgeCaseNone)

	assert.Empty(t, findings)
}

func TestRangeValidator_DistanceCeiling(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	// 2500 km over 24 h keeps speed and duration within bounds, so the
	// distance ceiling is the only rule that fires.
	trip := makeTrip("trip-1", 0, 24, 0, 2500)
	findings := validator.Validate(trip, domain.EdgeCaseNone)

	first := domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingDistanceRange, first.Code)

	// The same distance is fine for a long-haul trip.
	findings = validator.Validate(trip, domain.EdgeCaseLongHaul)
	assert.False(t, domain.HasError(findings))

	// But long haul has its own ceiling.
	far := makeTrip("trip-2", 0, 48, 0, 3500)
	findings = validator.Validate(far, domain.EdgeCaseLongHaul)
	first = domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingDistanceRange, first.Code)
}

func TestRangeValidator_ShortTripWarning(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	trip := makeTrip("trip-1", 0, 0.5, 1000, 1002)
	findings := validator.Validate(trip, domain.EdgeCaseNone)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
	assert.Equal(t, domain.FindingDistanceRange, findings[0].Code)

	// Maintenance and test drives are exempt from the short-trip warning.
	assert.Empty(t, validator.Validate(trip, domain.EdgeCaseMaintenance))
	assert.Empty(t, validator.Validate(trip, domain.EdgeCaseTestDrive))
}

func TestRangeValidator_DurationCeiling(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	// 60 h exceeds the regular 48 h ceiling. Keep the distance small enough
	// that no other rule fires.
	trip := makeTrip("trip-1", 0, 60, 1000, 1500)
	findings := validator.Validate(trip, domain.EdgeCaseNone)

	first := domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingDurationRange, first.Code)

	// Long haul stretches the ceiling to 72 h but warns above 36 h.
	findings = validator.Validate(trip, domain.EdgeCaseLongHaul)
	assert.False(t, domain.HasError(findings))
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
	assert.Equal(t, domain.FindingDurationRange, findings[0].Code)
}

func TestRangeValidator_AverageSpeed(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	// 300 km in 2 h is 150 km/h.
	trip := makeTrip("trip-1", 0, 2, 1000, 1300)
	findings := validator.Validate(trip, domain.EdgeCaseNone)

	first := domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingAverageSpeed, first.Code)

	// The check does not run for short hops, however fast they look.
	hop := makeTrip("trip-2", 0, 0.05, 1000, 1008)
	findings = validator.Validate(hop, domain.EdgeCaseNone)
	for _, f := range findings {
		assert.NotEqual(t, domain.FindingAverageSpeed, f.Code)
	}
}

func TestRangeValidator_FuelEfficiency(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	// 150 km on 12 L is 12.5 km/L, well inside the band.
	trip := makeRefuelTrip("trip-1", 0, 3, 1000, 1150, 12)
	assert.Empty(t, validator.Validate(trip, domain.EdgeCaseNone))

	// 2 km on 40 L is an implied 0.05 km/L: an error for a regular trip,
	// expected for a dedicated fuel stop.
	stop := makeRefuelTrip("trip-2", 0, 0.5, 1000, 1002, 40)
	findings := validator.Validate(stop, domain.EdgeCaseNone)
	first := domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingFuelEfficiency, first.Code)

	assert.False(t, domain.HasError(validator.Validate(stop, domain.EdgeCaseRefueling)))

	// 120 km on 2 L is 60 km/L, above the plausible ceiling.
	generous := makeRefuelTrip("trip-3", 0, 2, 1000, 1120, 2)
	findings = validator.Validate(generous, domain.EdgeCaseNone)
	first = domain.FirstError(findings)
	require.NotNil(t, first)
	assert.Equal(t, domain.FindingFuelEfficiency, first.Code)
}

func TestRangeValidator_FuelEfficiencyWarnBand(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	// 80 km on 20 L is 4 km/L: below the regular 5 km/L warn floor but
	// above the relaxed 3 km/L floor used for edge-case trips.
	trip := makeRefuelTrip("trip-1", 0, 2, 1000, 1080, 20)

	findings := validator.Validate(trip, domain.EdgeCaseNone)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
	assert.Equal(t, domain.FindingFuelEfficiency, findings[0].Code)

	assert.Empty(t, validator.Validate(trip, domain.EdgeCaseLongHaul))
}

func TestRangeValidator_Expenses(t *testing.T) {
	t.Parallel()

	validator := NewRangeValidator(testConfig())

	trip := makeTrip("trip-1", 0, 2, 1000, 1100)
	trip.Expenses.Toll = decimal.NewFromInt(-50)
	trip.Expenses.Fuel = decimal.NewFromInt(60000)
	trip.Expenses.Driver = decimal.NewFromInt(7000)

	findings := validator.Validate(trip, domain.EdgeCaseNone)

	var errors, warnings int
	for _, f := range findings {
		require.Equal(t, domain.FindingExpenseRange, f.Code)
		switch f.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		}
	}

	// Negative toll and over-ceiling fuel are errors; the driver allowance
	// is only above the warn line.
	assert.Equal(t, 2, errors)
	assert.Equal(t, 1, warnings)
}
