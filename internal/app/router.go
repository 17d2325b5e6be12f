package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"rideengine/internal/handler"
	"rideengine/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler *handler.RideHandler
	HubHandler  *handler.HubHandler
	// Idempotency may be nil, in which case Idempotency-Key is ignored.
	Idempotency middleware.IdempotencyStore
	NewRelicApp *newrelic.Application
	Logger      *slog.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/quotes", deps.RideHandler.Quote)

		rides := v1.Group("/rides")
		{
			rides.POST("", middleware.Idempotency(deps.Idempotency, deps.Logger), deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.GET("/:id/summary", deps.RideHandler.GetSummary)
			rides.GET("/:id/rejections", deps.RideHandler.ListRejections)

			rides.POST("/:id/accept", deps.RideHandler.AcceptRide)
			rides.POST("/:id/reject", deps.RideHandler.RejectRide)
			rides.POST("/:id/arrive", deps.RideHandler.DriverArrived)
			rides.POST("/:id/start", deps.RideHandler.StartRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}

		hub := v1.Group("/hub")
		{
			hub.GET("/rejections", deps.HubHandler.RecentRejections)
			hub.GET("/heatmap", deps.HubHandler.Heatmap)
		}
	}

	return router
}
