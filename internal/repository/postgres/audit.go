package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"fleetledger/internal/domain"
	"fleetledger/internal/repository"
)

// AuditRepository is a PostgreSQL implementation of repository.AuditRepository.
type AuditRepository struct {
	q Querier
}

// NewAuditRepository creates a new PostgreSQL audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{q: db}
}

// NewAuditRepositoryWithTx creates an audit repository using a transaction.
func NewAuditRepositoryWithTx(tx *sql.Tx) *AuditRepository {
	return &AuditRepository{q: tx}
}

// Create appends an audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (
			id, event_type, entity_type, entity_id, summary,
			before_state, after_state, severity, tags, note, actor_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var before, after any
	if len(entry.BeforeState) > 0 {
		before = []byte(entry.BeforeState)
	}
	if len(entry.AfterState) > 0 {
		after = []byte(entry.AfterState)
	}

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.EventType,
		entry.EntityType,
		entry.EntityID,
		entry.Summary,
		before,
		after,
		entry.Severity,
		pq.Array(entry.Tags),
		entry.Note,
		entry.ActorID,
		entry.CreatedAt,
	)

	return err
}

// ListByEntity retrieves the entries for one entity, newest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityID string, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, summary,
		       before_state, after_state, severity, tags, note, actor_id, created_at
		FROM audit_log
		WHERE entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var (
			entry  domain.AuditEntry
			before []byte
			after  []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Summary,
			&before,
			&after,
			&entry.Severity,
			pq.Array(&entry.Tags),
			&entry.Note,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.BeforeState = before
		entry.AfterState = after
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Ensure AuditRepository implements repository.AuditRepository.
var _ repository.AuditRepository = (*AuditRepository)(nil)
