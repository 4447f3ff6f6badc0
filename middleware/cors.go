package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows any origin. Preflights are answered here with 200.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization", "Content-Length", "X-Requested-With"},
		OptionsResponseStatusCode: http.StatusOK,
	})
}

// Preflight stops OPTIONS requests that the CORS middleware let through,
// such as those without an Origin header, so they never reach the backend.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
