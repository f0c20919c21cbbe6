package tests

import (
	"context"
	"errors"
	"testing"

	"fleetledger/internal/domain"
	"fleetledger/internal/service"
)

// ──────────────────────────────────────────────
// AUDIT TRAIL
// ──────────────────────────────────────────────

func TestAudit_RecordFillsIdentityAndTimestamp(t *testing.T) {
	t.Parallel()

	auditRepo := NewMockAuditRepository()
	svc := service.NewAuditService(auditRepo)

	svc.Record(context.Background(), domain.AuditEntry{
		EventType:  domain.AuditTripCreated,
		EntityType: "trip",
		EntityID:   "trip-1",
		Summary:    "trip recorded",
		Severity:   domain.SeverityInfo,
		ActorID:    "user-1",
	})

	entries := auditRepo.EntriesFor("trip-1")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected a generated entry ID")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestAudit_RecordSwallowsStorageErrors(t *testing.T) {
	t.Parallel()

	auditRepo := NewMockAuditRepository()
	auditRepo.CreateError = errors.New("audit store down")
	svc := service.NewAuditService(auditRepo)

	// Auditing is best-effort; a failing trail must never panic or block
	// the write that triggered it.
	svc.Record(context.Background(), domain.AuditEntry{
		EventType: domain.AuditTripCreated,
		EntityID:  "trip-1",
	})
}

func TestAudit_RecordFindingsSkipsErrors(t *testing.T) {
	t.Parallel()

	auditRepo := NewMockAuditRepository()
	svc := service.NewAuditService(auditRepo)

	findings := []domain.Finding{
		{Severity: domain.SeverityWarning, Code: domain.FindingContinuityGap, Message: "moderate gap"},
		{Severity: domain.SeverityInfo, Code: domain.FindingContinuityGap, Message: "first trip"},
		{Severity: domain.SeverityError, Code: domain.FindingDistanceRange, Message: "too far"},
	}
	svc.RecordFindings(context.Background(), domain.Actor{UserID: "user-1"}, "trip-1", findings)

	entries := auditRepo.EntriesFor("trip-1")

	// Error findings block the write and are reported to the caller; only
	// the non-blocking findings land in the trail.
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.EventType != domain.AuditValidationWarning {
			t.Errorf("expected %s, got %s", domain.AuditValidationWarning, e.EventType)
		}
		if len(e.Tags) != 1 || e.Tags[0] != string(domain.FindingContinuityGap) {
			t.Errorf("expected the finding code as tag, got %v", e.Tags)
		}
	}
}

func TestAudit_ListClampsLimit(t *testing.T) {
	t.Parallel()

	auditRepo := NewMockAuditRepository()
	svc := service.NewAuditService(auditRepo)

	for i := 0; i < 60; i++ {
		svc.Record(context.Background(), domain.AuditEntry{
			EventType: domain.AuditTripUpdated,
			EntityID:  "trip-1",
		})
	}

	// A non-positive limit falls back to the default page size.
	entries, err := svc.ListByEntity(context.Background(), "trip-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 50 {
		t.Errorf("expected the default limit of 50, got %d", len(entries))
	}
}
