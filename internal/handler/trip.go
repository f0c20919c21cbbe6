package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetledger/internal/domain"
	"fleetledger/internal/middleware"
	"fleetledger/internal/service"
)

// TripHandler handles HTTP requests for the trip ledger.
type TripHandler struct {
	tripService    *service.TripService
	cascadeService *service.CascadeService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, cascadeService *service.CascadeService) *TripHandler {
	return &TripHandler{tripService: tripService, cascadeService: cascadeService}
}

// ExpensesPayload carries the named expense fields.
type ExpensesPayload struct {
	Fuel      decimal.Decimal `json:"fuel"`
	Driver    decimal.Decimal `json:"driver"`
	Toll      decimal.Decimal `json:"toll"`
	Misc      decimal.Decimal `json:"misc"`
	Breakdown decimal.Decimal `json:"breakdown"`
}

// TripRequest is the payload for creating or editing a trip.
type TripRequest struct {
	VehicleID     string          `json:"vehicle_id"`
	DriverID      string          `json:"driver_id"`
	StartTime     time.Time       `json:"start_time" binding:"required"`
	EndTime       time.Time       `json:"end_time" binding:"required"`
	StartKm       int64           `json:"start_km"`
	EndKm         int64           `json:"end_km"`
	RefuelingDone bool            `json:"refueling_done"`
	FuelQuantity  float64         `json:"fuel_quantity"`
	TripType      string          `json:"trip_type"`
	Notes         string          `json:"notes"`
	Expenses      ExpensesPayload `json:"expenses"`
}

func (r TripRequest) toInput() service.TripInput {
	return service.TripInput{
		VehicleID:     r.VehicleID,
		DriverID:      r.DriverID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		StartKm:       r.StartKm,
		EndKm:         r.EndKm,
		RefuelingDone: r.RefuelingDone,
		FuelQuantity:  r.FuelQuantity,
		TripType:      r.TripType,
		Notes:         r.Notes,
		Expenses: domain.Expenses{
			Fuel:      r.Expenses.Fuel,
			Driver:    r.Expenses.Driver,
			Toll:      r.Expenses.Toll,
			Misc:      r.Expenses.Misc,
			Breakdown: r.Expenses.Breakdown,
		},
	}
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID             string           `json:"id"`
	SerialNumber   string           `json:"serial_number"`
	VehicleID      string           `json:"vehicle_id"`
	DriverID       string           `json:"driver_id,omitempty"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	StartKm        int64            `json:"start_km"`
	EndKm          int64            `json:"end_km"`
	RefuelingDone  bool             `json:"refueling_done"`
	FuelQuantity   float64          `json:"fuel_quantity,omitempty"`
	CalculatedKmpl *float64         `json:"calculated_kmpl,omitempty"`
	TripType       string           `json:"trip_type,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Expenses       ExpensesPayload  `json:"expenses"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
	DeletionReason string           `json:"deletion_reason,omitempty"`
	Findings       []domain.Finding `json:"findings,omitempty"`
}

func toTripResponse(trip *domain.Trip, findings []domain.Finding) TripResponse {
	return TripResponse{
		ID:             trip.ID,
		SerialNumber:   trip.SerialNumber,
		VehicleID:      trip.VehicleID,
		DriverID:       trip.DriverID,
		StartTime:      trip.StartTime,
		EndTime:        trip.EndTime,
		StartKm:        trip.StartKm,
		EndKm:          trip.EndKm,
		RefuelingDone:  trip.RefuelingDone,
		FuelQuantity:   trip.FuelQuantity,
		CalculatedKmpl: trip.CalculatedKmpl,
		TripType:       trip.TripType,
		Notes:          trip.Notes,
		Expenses: ExpensesPayload{
			Fuel:      trip.Expenses.Fuel,
			Driver:    trip.Expenses.Driver,
			Toll:      trip.Expenses.Toll,
			Misc:      trip.Expenses.Misc,
			Breakdown: trip.Expenses.Breakdown,
		},
		DeletedAt:      trip.DeletedAt,
		DeletionReason: trip.DeletionReason,
		Findings:       findings,
	}
}

func actor(c *gin.Context) domain.Actor {
	return domain.Actor{UserID: middleware.ActorID(c)}
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.tripService.Create(c.Request.Context(), actor(c), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(result.Trip, result.Findings))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip, nil))
}

// ListTrips handles GET /v1/trips?vehicle_id=...&include_deleted=true
func (h *TripHandler) ListTrips(c *gin.Context) {
	activeOnly := c.Query("include_deleted") != "true"

	trips, err := h.tripService.List(c.Request.Context(), actor(c), c.Query("vehicle_id"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		responses = append(responses, toTripResponse(trip, nil))
	}

	respondJSON(c, http.StatusOK, responses)
}

// UpdateTrip handles PUT /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.tripService.Update(c.Request.Context(), actor(c), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(result.Trip, result.Findings))
}

// DeleteTripRequest is the optional payload for DELETE /v1/trips/:id.
type DeleteTripRequest struct {
	Reason string `json:"reason"`
}

// DeleteTripResponse reports how the deletion guard resolved the request.
type DeleteTripResponse struct {
	TripID         string   `json:"trip_id"`
	Mode           string   `json:"mode"`
	Protected      bool     `json:"protected"`
	Message        string   `json:"message,omitempty"`
	DependentTrips []string `json:"dependent_trips,omitempty"`
}

// DeleteTrip handles DELETE /v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	var req DeleteTripRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	result, err := h.tripService.Delete(c.Request.Context(), actor(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	response := DeleteTripResponse{
		TripID: result.Trip.ID,
		Mode:   string(result.Mode),
	}
	if result.Protection != nil {
		response.Protected = true
		response.Message = result.Protection.Error()
		response.DependentTrips = result.Protection.DependentTrips
	}

	respondJSON(c, http.StatusOK, response)
}

// RestoreTrip handles POST /v1/trips/:id/restore
func (h *TripHandler) RestoreTrip(c *gin.Context) {
	result, err := h.tripService.Restore(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(result.Trip, result.Findings))
}

// CorrectionRequestPayload is the payload for odometer corrections.
type CorrectionRequestPayload struct {
	NewEndKm int64  `json:"new_end_km" binding:"required"`
	Reason   string `json:"reason"`
}

// CorrectOdometer handles POST /v1/trips/:id/correct-odometer
func (h *TripHandler) CorrectOdometer(c *gin.Context) {
	var req CorrectionRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	plan, err := h.cascadeService.Apply(c.Request.Context(), actor(c), service.CorrectionRequest{
		TripID:   c.Param("id"),
		NewEndKm: req.NewEndKm,
		Reason:   req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, plan)
}

// PreviewCorrection handles POST /v1/trips/:id/correct-odometer/preview
func (h *TripHandler) PreviewCorrection(c *gin.Context) {
	var req CorrectionRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	plan, err := h.cascadeService.Preview(c.Request.Context(), actor(c), service.CorrectionRequest{
		TripID:   c.Param("id"),
		NewEndKm: req.NewEndKm,
		Reason:   req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, plan)
}

// ChainReport handles GET /v1/vehicles/:id/mileage
func (h *TripHandler) ChainReport(c *gin.Context) {
	issues, err := h.tripService.ChainReport(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"vehicle_id": c.Param("id"), "consistent": len(issues) == 0, "issues": issues})
}

// BreakReport handles GET /v1/vehicles/:id/breaks
func (h *TripHandler) BreakReport(c *gin.Context) {
	breaks, err := h.tripService.BreakReport(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"vehicle_id": c.Param("id"), "breaks": breaks})
}

// OverlapReport handles GET /v1/vehicles/:id/overlaps
func (h *TripHandler) OverlapReport(c *gin.Context) {
	pairs, err := h.tripService.OverlapReport(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"vehicle_id": c.Param("id"), "overlaps": pairs})
}
