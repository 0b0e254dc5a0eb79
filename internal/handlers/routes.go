package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

// RegisterRoutes registers the health probes and the API v1 routes.
func RegisterRoutes(router *gin.Engine, health *HealthHandler, service services.CityService) {
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	ordinanceHandler := NewOrdinanceHandler(service)
	cityHandler := NewCityHandler(service)
	saveHandler := NewSaveHandler(service)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", health.Info)

		ordinance := v1.Group("/ordinance")
		{
			ordinance.GET("", ordinanceHandler.Get)
			ordinance.POST("/toggle", ordinanceHandler.Toggle)
			ordinance.POST("/availability", ordinanceHandler.Availability)
		}

		city := v1.Group("/city")
		{
			city.POST("", cityHandler.Open)
			city.DELETE("", cityHandler.Close)
			city.PUT("/population", cityHandler.Population)
			city.POST("/advance", cityHandler.Advance)
		}

		saves := v1.Group("/saves")
		{
			saves.GET("", saveHandler.List)
			saves.POST("", saveHandler.Create)
			saves.POST("/:id/load", saveHandler.Load)
		}
	}
}
