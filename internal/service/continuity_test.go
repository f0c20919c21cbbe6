package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetledger/internal/domain"
)

func TestContinuity_FirstTrip(t *testing.T) {
	t.Parallel()

	validator := NewContinuityValidator(testConfig())

	candidate := makeTrip("trip-1", 0, 2, 1000, 1100)
	findings, vErr := validator.Validate(nil, candidate)

	require.Nil(t, vErr)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityInfo, findings[0].Severity)
	assert.Equal(t, domain.FindingContinuityGap, findings[0].Code)
}

func TestContinuity_RollbackRejectedWithPriorTripIdentity(t *testing.T) {
	t.Parallel()

	validator := NewContinuityValidator(testConfig())

	previous := makeTrip("trip-a", 0, 2, 1000, 1100)
	previous.SerialNumber = "KA01-AB1234"
	ledger := []*domain.Trip{previous}

	// Starts 50 km behind where the previous trip ended.
	candidate := makeTrip("trip-b", 3, 2, 1050, 1150)
	findings, vErr := validator.Validate(ledger, candidate)

	assert.Nil(t, findings)
	require.NotNil(t, vErr)
	assert.Equal(t, domain.FindingOdometerRollback, vErr.Code)
	assert.Equal(t, "trip-a", vErr.RelatedTripID)
	assert.Equal(t, "KA01-AB1234", vErr.RelatedTripLabel)
	assert.Contains(t, vErr.Message, "1100")
}

func TestContinuity_GapBands(t *testing.T) {
	t.Parallel()

	validator := NewContinuityValidator(testConfig())

	previous := makeTrip("trip-a", 0, 2, 1000, 1100)
	ledger := []*domain.Trip{previous}

	cases := []struct {
		name     string
		startKm  int64
		severity domain.Severity
	}{
		{"exact continuation", 1100, domain.SeverityInfo},
		{"small gap", 1108, domain.SeverityInfo},
		{"moderate gap", 1140, domain.SeverityWarning},
		{"large gap", 1400, domain.SeverityWarning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := makeTrip("trip-b", 3, 2, tc.startKm, tc.startKm+100)
			findings, vErr := validator.Validate(ledger, candidate)

			require.Nil(t, vErr)
			require.Len(t, findings, 1)
			assert.Equal(t, tc.severity, findings[0].Severity)
		})
	}
}

func TestContinuity_SkipsDeletedAndSelf(t *testing.T) {
	t.Parallel()

	validator := NewContinuityValidator(testConfig())

	older := makeTrip("trip-a", 0, 2, 1000, 1100)
	deleted := makeTrip("trip-b", 3, 2, 1100, 1300)
	at := baseTime.Add(6 * time.Hour)
	deleted.DeletedAt = &at

	ledger := []*domain.Trip{older, deleted}

	// A deleted trip never anchors continuity: the candidate validates
	// against trip-a, not the deleted trip-b.
	candidate := makeTrip("trip-c", 6, 2, 1100, 1200)
	findings, vErr := validator.Validate(ledger, candidate)

	require.Nil(t, vErr)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityInfo, findings[0].Severity)

	// An edit validates against the rest of the ledger, not its own row.
	edited := makeTrip("trip-a", 0, 2, 1000, 1150)
	findings, vErr = validator.Validate(ledger, edited)
	require.Nil(t, vErr)
	require.Len(t, findings, 1)
}

func TestContinuity_ForwardOverrunRejected(t *testing.T) {
	t.Parallel()

	validator := NewContinuityValidator(testConfig())

	next := makeTrip("trip-b", 5, 2, 1100, 1200)
	ledger := []*domain.Trip{next}

	// An edit that pushes the end odometer past the next trip's start must
	// go through a cascading correction instead.
	edited := makeTrip("trip-a", 0, 2, 1000, 1150)
	vErr := validator.ValidateForward(ledger, edited)

	require.NotNil(t, vErr)
	assert.Equal(t, domain.FindingForwardContinuity, vErr.Code)
	assert.Equal(t, "trip-b", vErr.RelatedTripID)

	// Ending exactly where the next trip starts is fine.
	edited.EndKm = 1100
	assert.Nil(t, validator.ValidateForward(ledger, edited))
}
