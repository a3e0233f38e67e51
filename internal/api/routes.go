package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes wires the /v1 API onto the router.
func SetupRoutes(router *gin.Engine, handler *Handler, logger *logrus.Logger) {
	router.Use(RequestID())
	router.Use(RequestLogger(logger))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", handler.Health)
		v1.GET("/ping", handler.Ping)

		guarded := v1.Group("", handler.RequireAPIKey(), handler.RateLimit())
		{
			guarded.GET("/valuation", handler.GetValuation)
			guarded.POST("/valuation", handler.PostValuation)
		}
	}
}
