package api

import (
	"github.com/gin-gonic/gin"

	"solana-token-info/internal/observability"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tokens", handler.GetTokens)
		v1.GET("/tokens/:mint/snapshots", handler.ListSnapshots)
	}
}

// NewRouter builds a gin engine with recovery, logging and the routes.
func NewRouter(handler *Handler, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(Recovery())
	router.Use(Logger())
	SetupRoutes(router, handler)
	return router
}
