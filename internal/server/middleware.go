package server

import (
	"errors"
	"net/http"
	"time"

	"auction-house/services/auction/handler"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// IdentityMiddleware resolves the authenticated user id for the request.
// Authentication itself happens upstream; by the time a request reaches this
// service the identity is carried in the X-User-ID header. Routes mounted
// behind this middleware reject requests without one.
func IdentityMiddleware(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, errors.New("missing identity"), "user identity required")
		c.Abort()
		return
	}
	c.Set(handler.IdentityKey, userID)
	c.Next()
}
