package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
	"fleetledger/internal/redis"
	"fleetledger/internal/repository"
	"fleetledger/internal/repository/postgres"
)

// CorrectionStep is one trip mutation inside a correction plan.
type CorrectionStep struct {
	TripID     string   `json:"trip_id"`
	TripLabel  string   `json:"trip_label"`
	OldStartKm int64    `json:"old_start_km"`
	NewStartKm int64    `json:"new_start_km"`
	OldEndKm   int64    `json:"old_end_km"`
	NewEndKm   int64    `json:"new_end_km"`
	Refueling  bool     `json:"refueling"`
	OldKmpl    *float64 `json:"old_kmpl,omitempty"`
	NewKmpl    *float64 `json:"new_kmpl,omitempty"`
}

// CorrectionPlan is the full effect of one odometer correction: the target
// trip plus every later trip shifted by the delta. Preview returns the plan
// without mutating; Apply commits it. Both share the same traversal.
type CorrectionPlan struct {
	TripID    string           `json:"trip_id"`
	VehicleID string           `json:"vehicle_id"`
	DeltaKm   int64            `json:"delta_km"`
	Reason    string           `json:"reason"`
	Steps     []CorrectionStep `json:"steps"`

	// Truncated is set when the traversal hit the configured cap. A
	// truncated plan can be previewed but never applied.
	Truncated bool `json:"truncated"`
}

// CorrectionRequest contains the parameters for an odometer correction.
type CorrectionRequest struct {
	TripID   string
	NewEndKm int64
	Reason   string
}

// CascadeService propagates a corrected end odometer forward through every
// subsequent trip of the same vehicle and recomputes the mileage chain.
type CascadeService struct {
	db        *sql.DB
	tripRepo  repository.TripRepository
	mileage   *MileageCalculator
	audit     *AuditService
	lockStore redis.LockStoreInterface
	cache     redis.CacheStoreInterface
	cfg       config.ValidationConfig
}

// NewCascadeService creates a new CascadeService.
func NewCascadeService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	mileage *MileageCalculator,
	audit *AuditService,
	lockStore redis.LockStoreInterface,
	cache redis.CacheStoreInterface,
	cfg config.ValidationConfig,
) *CascadeService {
	return &CascadeService{
		db:        db,
		tripRepo:  tripRepo,
		mileage:   mileage,
		audit:     audit,
		lockStore: lockStore,
		cache:     cache,
		cfg:       cfg,
	}
}

// Preview builds the correction plan without mutating anything: the list of
// trips the correction would touch and their would-be odometer values.
func (s *CascadeService) Preview(ctx context.Context, actor domain.Actor, req CorrectionRequest) (*CorrectionPlan, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.NewEndKm < 0 {
		return nil, ErrInvalidOdometer
	}

	target, ledger, err := s.load(ctx, actor, req.TripID)
	if err != nil {
		return nil, err
	}

	plan := s.buildPlan(ledger, target, req.NewEndKm, req.Reason)
	return plan, nil
}

// Apply authorizes, plans, and commits an odometer correction as one atomic
// unit. Every mutated trip, the target included, produces an audit entry
// with its old and new odometer pair.
func (s *CascadeService) Apply(ctx context.Context, actor domain.Actor, req CorrectionRequest) (*CorrectionPlan, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.NewEndKm < 0 {
		return nil, ErrInvalidOdometer
	}

	target, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	// Serialize against other writes to this vehicle's ledger.
	locked, err := s.lockStore.AcquireVehicleLock(ctx, target.VehicleID, s.cfg.VehicleLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrVehicleBusy
	}
	defer func() { _ = s.lockStore.ReleaseVehicleLock(ctx, target.VehicleID) }()

	target, ledger, err := s.load(ctx, actor, req.TripID)
	if err != nil {
		return nil, err
	}

	plan := s.buildPlan(ledger, target, req.NewEndKm, req.Reason)
	if plan.Truncated {
		return nil, &domain.CascadeTruncatedError{TripID: target.ID, MaxTrips: s.cfg.CascadeMaxTrips}
	}
	if len(plan.Steps) == 0 {
		return plan, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	for _, step := range plan.Steps {
		kmpl := step.NewKmpl
		if kmpl == nil {
			kmpl = step.OldKmpl
		}
		if err = txTripRepo.UpdateOdometer(ctx, step.TripID, step.NewStartKm, step.NewEndKm, kmpl); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	// Audit after commit; failures here never undo the correction.
	s.auditPlan(ctx, actor, plan)
	_ = s.cache.InvalidateChainReport(ctx, target.VehicleID)

	return plan, nil
}

// load fetches the target trip, authorizes the actor against record
// ownership, and materializes the vehicle's active ledger.
func (s *CascadeService) load(ctx context.Context, actor domain.Actor, tripID string) (*domain.Trip, []*domain.Trip, error) {
	target, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	if target.CreatedBy != actor.UserID {
		return nil, nil, &domain.AuthorizationError{ActorID: actor.UserID, EntityType: "trip", EntityID: target.ID}
	}

	ledger, err := s.tripRepo.ListByVehicle(ctx, target.VehicleID, true)
	if err != nil {
		return nil, nil, err
	}

	// Re-point the target at the ledger's copy so the plan mutates one
	// consistent in-memory snapshot.
	for _, t := range ledger {
		if t.ID == target.ID {
			return t, ledger, nil
		}
	}
	return nil, nil, repository.ErrNotFound
}

// buildPlan performs the single shared traversal: shift the target's end
// odometer, shift every later trip by the delta, then rebuild the mileage
// chain over the mutated snapshot. The terminal action (persist or report)
// belongs to the caller.
func (s *CascadeService) buildPlan(ledger []*domain.Trip, target *domain.Trip, newEndKm int64, reason string) *CorrectionPlan {
	plan := &CorrectionPlan{
		TripID:    target.ID,
		VehicleID: target.VehicleID,
		DeltaKm:   newEndKm - target.EndKm,
		Reason:    reason,
	}

	steps := make(map[string]*CorrectionStep)
	addStep := func(t *domain.Trip) *CorrectionStep {
		if st, ok := steps[t.ID]; ok {
			return st
		}
		st := &CorrectionStep{
			TripID:     t.ID,
			TripLabel:  t.Label(),
			OldStartKm: t.StartKm,
			NewStartKm: t.StartKm,
			OldEndKm:   t.EndKm,
			NewEndKm:   t.EndKm,
			Refueling:  t.IsRefueling(),
			OldKmpl:    t.CalculatedKmpl,
		}
		steps[t.ID] = st
		return st
	}

	// Target: end odometer only.
	targetStep := addStep(target)
	targetStep.NewEndKm = newEndKm
	target.EndKm = newEndKm

	if plan.DeltaKm != 0 {
		shifted := 0
		for _, t := range ledger {
			if t.Deleted() || t.ID == target.ID || !t.StartTime.After(target.EndTime) {
				continue
			}
			if shifted >= s.cfg.CascadeMaxTrips {
				plan.Truncated = true
				break
			}
			st := addStep(t)
			st.NewStartKm = t.StartKm + plan.DeltaKm
			st.NewEndKm = t.EndKm + plan.DeltaKm
			t.StartKm = st.NewStartKm
			t.EndKm = st.NewEndKm
			shifted++
		}
	}

	// Recompute the mileage chain over the mutated snapshot; fold the
	// changed values into their steps.
	for _, upd := range s.mileage.RebuildChain(ledger) {
		t := findTrip(ledger, upd.TripID)
		if t == nil {
			continue
		}
		st := addStep(t)
		v := upd.NewKmpl
		st.NewKmpl = &v
		st.OldKmpl = upd.OldKmpl
	}

	// Emit steps in ledger (time) order, dropping no-op steps that neither
	// shifted nor changed mileage. The target is always first.
	ordered := []CorrectionStep{*targetStep}
	for _, t := range ledger {
		st, ok := steps[t.ID]
		if !ok || st == targetStep {
			continue
		}
		if st.NewStartKm == st.OldStartKm && st.NewEndKm == st.OldEndKm && st.NewKmpl == nil {
			continue
		}
		ordered = append(ordered, *st)
	}
	plan.Steps = ordered

	// A zero-delta correction of a non-refueling trip changes nothing.
	if plan.DeltaKm == 0 && len(plan.Steps) == 1 && plan.Steps[0].NewKmpl == nil {
		plan.Steps = nil
	}

	return plan
}

// odometerState is the audit snapshot of one trip's odometer pair.
type odometerState struct {
	StartKm int64    `json:"start_km"`
	EndKm   int64    `json:"end_km"`
	Kmpl    *float64 `json:"kmpl,omitempty"`
}

func (s *CascadeService) auditPlan(ctx context.Context, actor domain.Actor, plan *CorrectionPlan) {
	for i, step := range plan.Steps {
		before, _ := json.Marshal(odometerState{StartKm: step.OldStartKm, EndKm: step.OldEndKm, Kmpl: step.OldKmpl})
		after, _ := json.Marshal(odometerState{StartKm: step.NewStartKm, EndKm: step.NewEndKm, Kmpl: step.NewKmpl})

		eventType := domain.AuditCascadeShift
		summary := fmt.Sprintf("trip %s shifted by %+d km by correction of trip %s", step.TripLabel, plan.DeltaKm, plan.TripID)
		if i == 0 {
			eventType = domain.AuditOdometerCorrected
			summary = fmt.Sprintf("trip %s end odometer corrected from %d to %d km", step.TripLabel, step.OldEndKm, step.NewEndKm)
		}

		s.audit.Record(ctx, domain.AuditEntry{
			EventType:   eventType,
			EntityType:  "trip",
			EntityID:    step.TripID,
			Summary:     summary,
			BeforeState: before,
			AfterState:  after,
			Severity:    domain.SeverityInfo,
			Tags:        []string{"cascade"},
			Note:        plan.Reason,
			ActorID:     actor.UserID,
		})
	}
}

func findTrip(ledger []*domain.Trip, id string) *domain.Trip {
	for _, t := range ledger {
		if t.ID == id {
			return t
		}
	}
	return nil
}
