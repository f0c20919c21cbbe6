package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleetledger/internal/handler"
	"fleetledger/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	VehicleHandler *handler.VehicleHandler
	AuditHandler   *handler.AuditHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes. Everything under /v1 requires a caller identity, and
	// mutating requests may carry an Idempotency-Key.
	v1 := router.Group("/v1")
	v1.Use(middleware.IdentityMiddleware())
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.ListTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.PUT("/:id", deps.TripHandler.UpdateTrip)
			trips.DELETE("/:id", deps.TripHandler.DeleteTrip)
			trips.POST("/:id/restore", deps.TripHandler.RestoreTrip)
			trips.POST("/:id/correct-odometer", deps.TripHandler.CorrectOdometer)
			trips.POST("/:id/correct-odometer/preview", deps.TripHandler.PreviewCorrection)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.RegisterVehicle)
			vehicles.GET("", deps.VehicleHandler.ListVehicles)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.GET("/:id/mileage", deps.TripHandler.ChainReport)
			vehicles.GET("/:id/breaks", deps.TripHandler.BreakReport)
			vehicles.GET("/:id/overlaps", deps.TripHandler.OverlapReport)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("", deps.AuditHandler.ListByEntity)
		}
	}

	return router
}
