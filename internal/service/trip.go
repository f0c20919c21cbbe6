package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetledger/internal/config"
	"fleetledger/internal/domain"
	"fleetledger/internal/redis"
	"fleetledger/internal/repository"
	"fleetledger/internal/repository/postgres"
)

// TripService runs the full write pipeline over a vehicle's ledger: range
// checks, continuity, overlap detection, mileage recomputation, the deletion
// guard, and recovery. Every externally visible write is one atomic unit:
// the vehicle lock serializes it against concurrent writes to the same
// ledger, and a transaction commits the trip mutation together with every
// derived mileage update, or none of them.
type TripService struct {
	db          *sql.DB
	tripRepo    repository.TripRepository
	vehicleRepo repository.VehicleRepository
	classifier  *EdgeCaseClassifier
	ranges      *RangeValidator
	continuity  *ContinuityValidator
	overlaps    *OverlapDetector
	mileage     *MileageCalculator
	audit       *AuditService
	lockStore   redis.LockStoreInterface
	cache       redis.CacheStoreInterface
	cfg         config.ValidationConfig
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	mileage *MileageCalculator,
	audit *AuditService,
	lockStore redis.LockStoreInterface,
	cache redis.CacheStoreInterface,
	cfg config.ValidationConfig,
) *TripService {
	return &TripService{
		db:          db,
		tripRepo:    tripRepo,
		vehicleRepo: vehicleRepo,
		classifier:  NewEdgeCaseClassifier(),
		ranges:      NewRangeValidator(cfg),
		continuity:  NewContinuityValidator(cfg),
		overlaps:    NewOverlapDetector(),
		mileage:     mileage,
		audit:       audit,
		lockStore:   lockStore,
		cache:       cache,
		cfg:         cfg,
	}
}

// TripInput carries the caller-settable fields of a trip.
type TripInput struct {
	VehicleID     string
	DriverID      string
	StartTime     time.Time
	EndTime       time.Time
	StartKm       int64
	EndKm         int64
	RefuelingDone bool
	FuelQuantity  float64
	TripType      string
	Notes         string
	Expenses      domain.Expenses
}

// TripResult is the outcome of a successful write: the persisted trip plus
// the non-blocking findings raised along the way.
type TripResult struct {
	Trip     *domain.Trip
	Findings []domain.Finding
}

// Create validates and persists a new trip.
func (s *TripService) Create(ctx context.Context, actor domain.Actor, input TripInput) (*TripResult, error) {
	if input.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if err := checkBasicShape(&input); err != nil {
		return nil, err
	}

	vehicle, err := s.authorizeVehicle(ctx, actor, input.VehicleID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	trip := &domain.Trip{
		ID:            uuid.New().String(),
		VehicleID:     input.VehicleID,
		DriverID:      input.DriverID,
		CreatedBy:     actor.UserID,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		StartKm:       input.StartKm,
		EndKm:         input.EndKm,
		RefuelingDone: input.RefuelingDone,
		FuelQuantity:  input.FuelQuantity,
		TripType:      input.TripType,
		Notes:         input.Notes,
		Expenses:      input.Expenses,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	trip.SerialNumber = serialNumber(vehicle.Registration)

	ledger, err := s.tripRepo.ListByVehicle(ctx, trip.VehicleID, true)
	if err != nil {
		return nil, err
	}

	findings, err := s.runChecks(ctx, ledger, trip)
	if err != nil {
		return nil, err
	}

	// Admit the candidate into the in-memory snapshot and recompute the
	// mileage chain: an out-of-order insert can change the anchor of later
	// refueling trips, not only the candidate's own value.
	snapshot := admit(ledger, trip)
	updates := s.mileage.RebuildChain(snapshot)

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
	if err = txTripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}
	if err = persistChainUpdates(ctx, txTripRepo, snapshot, updates, trip.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.auditChainUpdates(ctx, actor, updates, trip.ID)
	s.afterWrite(ctx, actor, trip, findings, domain.AuditTripCreated,
		fmt.Sprintf("trip %s recorded: %d to %d km", trip.Label(), trip.StartKm, trip.EndKm))

	return &TripResult{Trip: trip, Findings: findings}, nil
}

// Update validates and applies a corrective edit to an existing trip,
// re-running the full pipeline including the forward continuity check.
func (s *TripService) Update(ctx context.Context, actor domain.Actor, tripID string, input TripInput) (*TripResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if err := checkBasicShape(&input); err != nil {
		return nil, err
	}

	existing, err := s.authorizeTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if existing.Deleted() {
		return nil, repository.ErrNotFound
	}

	unlock, err := s.lockVehicle(ctx, existing.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ledger, err := s.tripRepo.ListByVehicle(ctx, existing.VehicleID, true)
	if err != nil {
		return nil, err
	}

	trip := findTrip(ledger, tripID)
	if trip == nil {
		return nil, repository.ErrNotFound
	}
	before := *trip

	trip.DriverID = input.DriverID
	trip.StartTime = input.StartTime
	trip.EndTime = input.EndTime
	trip.StartKm = input.StartKm
	trip.EndKm = input.EndKm
	trip.RefuelingDone = input.RefuelingDone
	trip.FuelQuantity = input.FuelQuantity
	trip.TripType = input.TripType
	trip.Notes = input.Notes
	trip.Expenses = input.Expenses
	trip.UpdatedAt = time.Now()

	findings, err := s.runChecks(ctx, ledger, trip)
	if err != nil {
		return nil, err
	}

	sortLedger(ledger)
	updates := s.mileage.RebuildChain(ledger)

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
	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	if err = persistChainUpdates(ctx, txTripRepo, ledger, updates, trip.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	beforeState, _ := json.Marshal(odometerState{StartKm: before.StartKm, EndKm: before.EndKm, Kmpl: before.CalculatedKmpl})
	afterState, _ := json.Marshal(odometerState{StartKm: trip.StartKm, EndKm: trip.EndKm, Kmpl: trip.CalculatedKmpl})
	s.audit.Record(ctx, domain.AuditEntry{
		EventType:   domain.AuditTripUpdated,
		EntityType:  "trip",
		EntityID:    trip.ID,
		Summary:     fmt.Sprintf("trip %s edited", trip.Label()),
		BeforeState: beforeState,
		AfterState:  afterState,
		Severity:    domain.SeverityInfo,
		ActorID:     actor.UserID,
	})
	s.audit.RecordFindings(ctx, actor, trip.ID, findings)
	s.auditChainUpdates(ctx, actor, updates, trip.ID)
	_ = s.cache.InvalidateChainReport(ctx, trip.VehicleID)

	return &TripResult{Trip: trip, Findings: findings}, nil
}

// DeletionMode reports how the deletion guard resolved a delete request.
type DeletionMode string

const (
	DeletionHard DeletionMode = "HARD"
	DeletionSoft DeletionMode = "SOFT"
)

// DeletionResult is the outcome of a delete request.
type DeletionResult struct {
	Trip *domain.Trip
	Mode DeletionMode

	// Protection is set when the guard converted the hard delete into a
	// soft delete to preserve the mileage chain.
	Protection *domain.IntegrityProtectionError
}

// Delete runs the deletion guard: a refueling trip that anchors later trips'
// mileage with no replacement anchor downstream is soft-deleted instead of
// removed; everything else is removed for real, with the chain rebuilt
// against whatever anchors remain.
func (s *TripService) Delete(ctx context.Context, actor domain.Actor, tripID, reason string) (*DeletionResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.authorizeTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Deleted() {
		return nil, ErrTripAlreadyDeleted
	}

	unlock, err := s.lockVehicle(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ledger, err := s.tripRepo.ListByVehicle(ctx, trip.VehicleID, true)
	if err != nil {
		return nil, err
	}

	outcome := resolveDeletion(ledger, trip)
	result := &DeletionResult{Trip: trip, Mode: outcome.Mode, Protection: outcome.Protection}

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
	now := time.Now()
	if result.Mode == DeletionSoft {
		if err = txTripRepo.SoftDelete(ctx, trip.ID, reason, actor.UserID, now); err != nil {
			return nil, err
		}
		trip.DeletedAt = &now
		trip.DeletionReason = reason
		trip.DeletedBy = actor.UserID
	} else {
		if err = txTripRepo.HardDelete(ctx, trip.ID); err != nil {
			return nil, err
		}
	}

	// Rebuild the chain over the remaining ledger so dependents pick up the
	// next surviving anchor, or fall back to the simple method.
	remaining := without(ledger, trip.ID)
	updates := s.mileage.RebuildChain(remaining)
	if err = persistChainUpdates(ctx, txTripRepo, remaining, updates, ""); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	eventType := domain.AuditTripDeleted
	summary := fmt.Sprintf("trip %s deleted", trip.Label())
	var afterState []byte
	if result.Mode == DeletionSoft {
		eventType = domain.AuditTripSoftDeleted
		summary = result.Protection.Error()
		afterState, _ = json.Marshal(protectionState{DependentTrips: result.Protection.DependentTrips})
	}
	s.audit.Record(ctx, domain.AuditEntry{
		EventType:  eventType,
		EntityType: "trip",
		EntityID:   trip.ID,
		Summary:    summary,
		AfterState: afterState,
		Severity:   outcome.Severity,
		Tags:       outcome.Tags,
		Note:       reason,
		ActorID:    actor.UserID,
	})
	s.auditChainUpdates(ctx, actor, updates, "")
	_ = s.cache.InvalidateChainReport(ctx, trip.VehicleID)

	return result, nil
}

// Restore re-admits a soft-deleted trip into the active ledger. The trip
// must re-pass every check against the current ledger state, since other
// corrections may have happened while it was deleted.
func (s *TripService) Restore(ctx context.Context, actor domain.Actor, tripID string) (*TripResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.authorizeTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Deleted() {
		return nil, ErrTripNotDeleted
	}

	unlock, err := s.lockVehicle(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ledger, err := s.tripRepo.ListByVehicle(ctx, trip.VehicleID, true)
	if err != nil {
		return nil, err
	}

	candidate := *trip
	candidate.DeletedAt = nil
	candidate.DeletionReason = ""
	candidate.DeletedBy = ""

	findings, err := s.runChecks(ctx, ledger, &candidate)
	if err != nil {
		return nil, err
	}

	snapshot := admit(ledger, &candidate)
	updates := s.mileage.RebuildChain(snapshot)

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
	if err = txTripRepo.Restore(ctx, candidate.ID); err != nil {
		return nil, err
	}
	if err = persistChainUpdates(ctx, txTripRepo, snapshot, updates, ""); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.auditChainUpdates(ctx, actor, updates, candidate.ID)
	s.afterWrite(ctx, actor, &candidate, findings, domain.AuditTripRestored,
		fmt.Sprintf("trip %s restored to the active ledger", candidate.Label()))

	return &TripResult{Trip: &candidate, Findings: findings}, nil
}

// Get retrieves a trip, enforcing ownership.
func (s *TripService) Get(ctx context.Context, actor domain.Actor, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.authorizeTrip(ctx, actor, tripID)
}

// List returns a vehicle's trips in start-time order.
func (s *TripService) List(ctx context.Context, actor domain.Actor, vehicleID string, activeOnly bool) ([]*domain.Trip, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if _, err := s.authorizeVehicle(ctx, actor, vehicleID); err != nil {
		return nil, err
	}
	return s.tripRepo.ListByVehicle(ctx, vehicleID, activeOnly)
}

// ChainReport validates a vehicle's mileage chain and reports drifted trips.
// Advisory: served from cache when fresh, and tolerates a snapshot that is
// slightly behind concurrent writes.
func (s *TripService) ChainReport(ctx context.Context, actor domain.Actor, vehicleID string) ([]ChainIssue, error) {
	if _, err := s.authorizeVehicle(ctx, actor, vehicleID); err != nil {
		return nil, err
	}

	if cached, err := s.cache.GetChainReport(ctx, vehicleID); err == nil && cached != nil {
		var issues []ChainIssue
		if json.Unmarshal(cached, &issues) == nil {
			return issues, nil
		}
	}

	ledger, err := s.tripRepo.ListByVehicle(ctx, vehicleID, true)
	if err != nil {
		return nil, err
	}

	issues := s.mileage.ValidateChain(ledger)
	if data, err := json.Marshal(issues); err == nil {
		_ = s.cache.SetChainReport(ctx, vehicleID, data)
	}

	return issues, nil
}

// BreakReport finds adjacent trips whose odometer values do not connect.
func (s *TripService) BreakReport(ctx context.Context, actor domain.Actor, vehicleID string) ([]OdometerBreak, error) {
	if _, err := s.authorizeVehicle(ctx, actor, vehicleID); err != nil {
		return nil, err
	}

	ledger, err := s.tripRepo.ListByVehicle(ctx, vehicleID, true)
	if err != nil {
		return nil, err
	}

	return s.mileage.DetectBreaks(ledger), nil
}

// OverlapReport scans a vehicle's ledger for overlapping trip pairs.
func (s *TripService) OverlapReport(ctx context.Context, actor domain.Actor, vehicleID string) ([]OverlapPair, error) {
	if _, err := s.authorizeVehicle(ctx, actor, vehicleID); err != nil {
		return nil, err
	}

	ledger, err := s.tripRepo.ListByVehicle(ctx, vehicleID, true)
	if err != nil {
		return nil, err
	}

	return s.overlaps.FindOverlaps(ledger), nil
}

// runChecks is the shared validation pipeline: edge-case classification,
// range checks, backward and forward continuity, then vehicle- and
// driver-scoped overlap detection. Returns the non-blocking findings; a
// blocking problem comes back as a ValidationError.
func (s *TripService) runChecks(ctx context.Context, ledger []*domain.Trip, trip *domain.Trip) ([]domain.Finding, error) {
	edgeCase := s.classifier.Classify(trip)

	findings := s.ranges.Validate(trip, edgeCase)
	if f := domain.FirstError(findings); f != nil {
		return nil, &domain.ValidationError{Code: f.Code, Field: f.Field, Message: f.Message}
	}

	contFindings, vErr := s.continuity.Validate(ledger, trip)
	if vErr != nil {
		return nil, vErr
	}
	findings = append(findings, contFindings...)

	if vErr := s.continuity.ValidateForward(ledger, trip); vErr != nil {
		return nil, vErr
	}

	if vErr := s.overlaps.Validate(ledger, trip, "vehicle"); vErr != nil {
		return nil, vErr
	}

	if trip.DriverID != "" {
		driverTrips, err := s.tripRepo.ListByDriver(ctx, trip.DriverID, true)
		if err != nil {
			return nil, err
		}
		if vErr := s.overlaps.Validate(driverTrips, trip, "driver"); vErr != nil {
			return nil, vErr
		}
	}

	return findings, nil
}

func (s *TripService) authorizeVehicle(ctx context.Context, actor domain.Actor, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.UserID {
		return nil, &domain.AuthorizationError{ActorID: actor.UserID, EntityType: "vehicle", EntityID: vehicleID}
	}
	return vehicle, nil
}

func (s *TripService) authorizeTrip(ctx context.Context, actor domain.Actor, tripID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.CreatedBy != actor.UserID {
		return nil, &domain.AuthorizationError{ActorID: actor.UserID, EntityType: "trip", EntityID: tripID}
	}
	return trip, nil
}

func (s *TripService) lockVehicle(ctx context.Context, vehicleID string) (func(), error) {
	locked, err := s.lockStore.AcquireVehicleLock(ctx, vehicleID, s.cfg.VehicleLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrVehicleBusy
	}
	return func() { _ = s.lockStore.ReleaseVehicleLock(ctx, vehicleID) }, nil
}

// auditChainUpdates records the ripple effect of a write: every other trip
// whose mileage was recomputed as a result.
func (s *TripService) auditChainUpdates(ctx context.Context, actor domain.Actor, updates []ChainUpdate, skipID string) {
	for _, upd := range updates {
		if upd.TripID == skipID {
			continue
		}
		s.audit.Record(ctx, domain.AuditEntry{
			EventType:  domain.AuditMileageComputed,
			EntityType: "trip",
			EntityID:   upd.TripID,
			Summary:    fmt.Sprintf("trip %s: mileage recomputed to %.2f km/L (%s)", upd.TripLabel, upd.NewKmpl, upd.Method),
			Severity:   domain.SeverityInfo,
			ActorID:    actor.UserID,
		})
	}
}

func (s *TripService) afterWrite(ctx context.Context, actor domain.Actor, trip *domain.Trip, findings []domain.Finding, eventType domain.AuditEventType, summary string) {
	afterState, _ := json.Marshal(odometerState{StartKm: trip.StartKm, EndKm: trip.EndKm, Kmpl: trip.CalculatedKmpl})
	s.audit.Record(ctx, domain.AuditEntry{
		EventType:  eventType,
		EntityType: "trip",
		EntityID:   trip.ID,
		Summary:    summary,
		AfterState: afterState,
		Severity:   domain.SeverityInfo,
		ActorID:    actor.UserID,
	})
	s.audit.RecordFindings(ctx, actor, trip.ID, findings)
	_ = s.cache.InvalidateChainReport(ctx, trip.VehicleID)
}

// checkBasicShape rejects inputs that violate the record-level invariants
// before the pipeline runs: time order, odometer order, non-negative values.
func checkBasicShape(input *TripInput) error {
	if !input.EndTime.After(input.StartTime) {
		return &domain.ValidationError{
			Code:    domain.FindingInvalidTimeOrder,
			Field:   "end_time",
			Message: "end time must be after start time",
		}
	}
	if input.StartKm < 0 {
		return &domain.ValidationError{
			Code:    domain.FindingDistanceRange,
			Field:   "start_km",
			Message: "start odometer cannot be negative",
		}
	}
	if input.EndKm < input.StartKm {
		return &domain.ValidationError{
			Code:    domain.FindingDistanceRange,
			Field:   "end_km",
			Message: fmt.Sprintf("end odometer %d cannot be below start odometer %d", input.EndKm, input.StartKm),
		}
	}
	if input.FuelQuantity < 0 {
		return &domain.ValidationError{
			Code:    domain.FindingFuelQuantity,
			Field:   "fuel_quantity",
			Message: "fuel quantity cannot be negative",
		}
	}
	return nil
}

// deletionOutcome is the guard's resolution of one delete request: the
// mode, the audit grading, and the protection details when a hard delete
// was converted.
type deletionOutcome struct {
	Mode       DeletionMode
	Severity   domain.Severity
	Tags       []string
	Protection *domain.IntegrityProtectionError
}

// protectionState is the audit snapshot of a guard conversion: the trips
// whose mileage the preserved anchor still serves.
type protectionState struct {
	DependentTrips []string `json:"dependent_trips"`
}

// resolveDeletion decides how a delete request plays out against the
// current ledger. Removing a refueling trip that anchors later trips'
// mileage is safe only when another refueling trip exists downstream;
// without one, the row is preserved as a soft delete instead.
func resolveDeletion(ledger []*domain.Trip, trip *domain.Trip) deletionOutcome {
	outcome := deletionOutcome{Mode: DeletionHard, Severity: domain.SeverityInfo}
	if !trip.IsRefueling() {
		return outcome
	}

	dependents := dependentTrips(ledger, trip)
	next := nextRefueling(ledger, trip)

	switch {
	case next != nil:
		// Dependents can recompute against the next anchor.
		outcome.Severity = domain.SeverityWarning
		outcome.Tags = []string{"anchor-removed"}
	case len(dependents) > 0:
		// No replacement anchor downstream: removing the trip would
		// orphan the dependents' mileage. Preserve the row instead.
		ids := make([]string, len(dependents))
		for i, d := range dependents {
			ids[i] = d.ID
		}
		outcome.Mode = DeletionSoft
		outcome.Severity = domain.SeverityError
		outcome.Tags = []string{"integrity-protection"}
		outcome.Protection = &domain.IntegrityProtectionError{
			TripID:         trip.ID,
			TripLabel:      trip.Label(),
			DependentTrips: ids,
		}
	}

	return outcome
}

// dependentTrips returns the non-deleted, non-refueling trips after the
// given refueling trip, up to but not including the next refueling trip.
func dependentTrips(ledger []*domain.Trip, trip *domain.Trip) []*domain.Trip {
	var dependents []*domain.Trip
	for _, t := range ledger {
		if t.ID == trip.ID || t.Deleted() || !t.StartTime.After(trip.EndTime) {
			continue
		}
		if t.IsRefueling() {
			break
		}
		dependents = append(dependents, t)
	}
	return dependents
}

// nextRefueling returns the earliest non-deleted refueling trip starting
// after the given trip ends, or nil.
func nextRefueling(ledger []*domain.Trip, trip *domain.Trip) *domain.Trip {
	for _, t := range ledger {
		if t.ID == trip.ID || t.Deleted() || !t.StartTime.After(trip.EndTime) {
			continue
		}
		if t.IsRefueling() {
			return t
		}
	}
	return nil
}

// admit inserts a candidate into a copy of the ledger, keeping start-time
// order.
func admit(ledger []*domain.Trip, trip *domain.Trip) []*domain.Trip {
	snapshot := make([]*domain.Trip, 0, len(ledger)+1)
	snapshot = append(snapshot, ledger...)
	snapshot = append(snapshot, trip)
	sortLedger(snapshot)
	return snapshot
}

func sortLedger(ledger []*domain.Trip) {
	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].StartTime.Before(ledger[j].StartTime)
	})
}

func without(ledger []*domain.Trip, tripID string) []*domain.Trip {
	out := make([]*domain.Trip, 0, len(ledger))
	for _, t := range ledger {
		if t.ID != tripID {
			out = append(out, t)
		}
	}
	return out
}

// persistChainUpdates writes recomputed mileage values inside the caller's
// transaction. The skipID trip is excluded when its row is already being
// written by the caller with the new value included.
func persistChainUpdates(ctx context.Context, repo repository.TripRepository, ledger []*domain.Trip, updates []ChainUpdate, skipID string) error {
	for _, upd := range updates {
		if upd.TripID == skipID {
			continue
		}
		t := findTrip(ledger, upd.TripID)
		if t == nil {
			continue
		}
		if err := repo.UpdateOdometer(ctx, t.ID, t.StartKm, t.EndKm, t.CalculatedKmpl); err != nil {
			return err
		}
	}
	return nil
}

func serialNumber(registration string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	if registration == "" {
		return "TRIP-" + suffix
	}
	return registration + "-" + suffix
}
