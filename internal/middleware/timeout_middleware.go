package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout caps how long one request's downstream work may run.
// Handlers pass c.Request.Context() into every service and store call,
// so the deadline set here bounds them all; a store call that outlives
// it fails with context.DeadlineExceeded and surfaces as a transient
// error.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
