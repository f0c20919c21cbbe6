package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fleetledger/internal/domain"
	"fleetledger/internal/repository"
)

// AuditService wraps the audit repository as a fire-and-forget sink. A failed
// audit write is logged and swallowed; it never blocks the trip mutation that
// produced it.
type AuditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends an entry to the audit trail. ID and timestamp are filled in
// here so callers only describe the event.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		log.Printf("audit write failed for %s %s: %v", entry.EntityType, entry.EntityID, err)
	}
}

// RecordFindings writes one warning entry per non-blocking finding.
func (s *AuditService) RecordFindings(ctx context.Context, actor domain.Actor, tripID string, findings []domain.Finding) {
	for _, f := range domain.Warnings(findings) {
		s.Record(ctx, domain.AuditEntry{
			EventType:  domain.AuditValidationWarning,
			EntityType: "trip",
			EntityID:   tripID,
			Summary:    f.Message,
			Severity:   f.Severity,
			Tags:       []string{string(f.Code)},
			ActorID:    actor.UserID,
		})
	}
}

// ListByEntity returns the audit trail for one entity, newest first.
func (s *AuditService) ListByEntity(ctx context.Context, entityID string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByEntity(ctx, entityID, limit)
}
