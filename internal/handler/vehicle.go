package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetledger/internal/domain"
	"fleetledger/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterVehicleRequest is the payload for POST /v1/vehicles.
type RegisterVehicleRequest struct {
	Registration string `json:"registration" binding:"required"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID           string    `json:"id"`
	Registration string    `json:"registration"`
	Make         string    `json:"make,omitempty"`
	Model        string    `json:"model,omitempty"`
	OwnerID      string    `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func toVehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           vehicle.ID,
		Registration: vehicle.Registration,
		Make:         vehicle.Make,
		Model:        vehicle.Model,
		OwnerID:      vehicle.OwnerID,
		CreatedAt:    vehicle.CreatedAt,
	}
}

// RegisterVehicle handles POST /v1/vehicles
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), actor(c), service.RegisterVehicleRequest{
		Registration: req.Registration,
		Make:         req.Make,
		Model:        req.Model,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.List(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		responses = append(responses, toVehicleResponse(vehicle))
	}

	respondJSON(c, http.StatusOK, responses)
}
