package domain

import (
	"encoding/json"
	"time"
)

// AuditEventType names the engine decision that produced an audit entry.
type AuditEventType string

const (
	AuditTripCreated       AuditEventType = "TRIP_CREATED"
	AuditTripUpdated       AuditEventType = "TRIP_UPDATED"
	AuditTripDeleted       AuditEventType = "TRIP_DELETED"
	AuditTripSoftDeleted   AuditEventType = "TRIP_SOFT_DELETED"
	AuditTripRestored      AuditEventType = "TRIP_RESTORED"
	AuditValidationWarning AuditEventType = "VALIDATION_WARNING"
	AuditMileageComputed   AuditEventType = "MILEAGE_COMPUTED"
	AuditOdometerCorrected AuditEventType = "ODOMETER_CORRECTED"
	AuditCascadeShift      AuditEventType = "CASCADE_SHIFT"
)

// AuditEntry is one append-only record of a validation decision, warning, or
// correction. Writes to the trail are fire-and-forget: a failed audit write
// never blocks the underlying trip mutation.
type AuditEntry struct {
	ID          string
	EventType   AuditEventType
	EntityType  string
	EntityID    string
	Summary     string
	BeforeState json.RawMessage
	AfterState  json.RawMessage
	Severity    Severity
	Tags        []string
	Note        string
	ActorID     string
	CreatedAt   time.Time
}
