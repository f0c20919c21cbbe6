package domain

import "fmt"

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// FindingCode identifies the rule that produced a finding.
type FindingCode string

const (
	FindingDistanceRange     FindingCode = "DISTANCE_RANGE"
	FindingDurationRange     FindingCode = "DURATION_RANGE"
	FindingAverageSpeed      FindingCode = "AVERAGE_SPEED"
	FindingFuelEfficiency    FindingCode = "FUEL_EFFICIENCY"
	FindingFuelQuantity      FindingCode = "FUEL_QUANTITY"
	FindingExpenseRange      FindingCode = "EXPENSE_RANGE"
	FindingContinuityGap     FindingCode = "CONTINUITY_GAP"
	FindingOdometerRollback  FindingCode = "ODOMETER_ROLLBACK"
	FindingForwardContinuity FindingCode = "FORWARD_CONTINUITY"
	FindingTimeOverlap       FindingCode = "TIME_OVERLAP"
	FindingInvalidTimeOrder  FindingCode = "INVALID_TIME_ORDER"
)

// Finding is one validation decision about a candidate trip.
// Error findings block the write; warning and info findings are recorded to
// the audit trail and the operation proceeds.
type Finding struct {
	Severity Severity    `json:"severity"`
	Code     FindingCode `json:"code"`
	Field    string      `json:"field,omitempty"`
	Message  string      `json:"message"`
}

// HasError reports whether any finding in the list is an error.
func HasError(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FirstError returns the first error finding, or nil.
func FirstError(findings []Finding) *Finding {
	for i := range findings {
		if findings[i].Severity == SeverityError {
			return &findings[i]
		}
	}
	return nil
}

// Warnings returns the non-blocking findings (warning and info).
func Warnings(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity != SeverityError {
			out = append(out, f)
		}
	}
	return out
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Code, f.Message)
}
