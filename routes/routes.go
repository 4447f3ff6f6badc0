package routes

import (
	"github.com/gin-gonic/gin"

	"eduguide/handlers"
	"eduguide/logger"
	"eduguide/middleware"
)

// SetupRoutes wires the dev proxy. CORS applies to every route; OPTIONS
// never reaches the backend.
func SetupRoutes(router *gin.Engine, proxyHandler *handlers.ProxyHandler, log *logger.Logger) {
	router.Use(middleware.RequestLogger(log), middleware.CORS(), middleware.Preflight())

	router.GET("/test", proxyHandler.Test)
	router.GET("/health", proxyHandler.Health)

	router.Any("/api/*path", proxyHandler.Forward)
}

// NewRouter builds a gin engine with recovery and the proxy routes.
func NewRouter(proxyHandler *handlers.ProxyHandler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, proxyHandler, log)
	return router
}
