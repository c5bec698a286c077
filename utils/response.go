package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse writes the success envelope every auction endpoint returns.
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError writes the error envelope. Callers pass a client-safe error:
// the serialized text reaches the caller verbatim.
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}
