package repository

import (
	"context"

	"fleetledger/internal/domain"
)

// AuditRepository defines the persistence operations for the audit trail.
// The trail is append-only: there is no update or delete.
type AuditRepository interface {
	// Create appends an audit entry.
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// ListByEntity retrieves the entries for one entity, newest first.
	ListByEntity(ctx context.Context, entityID string, limit int) ([]*domain.AuditEntry, error)
}
