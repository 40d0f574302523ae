package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
	maxRequestIDLength  = 128
)

// RequestID reuses the caller's X-Request-ID or generates a UUID, stores it
// in the gin context and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		ctx.Set(requestIDContextKey, requestID)
		ctx.Header(RequestIDHeader, requestID)
		ctx.Next()
	}
}

// GetRequestIDFromGinContext returns the request id set by RequestID
func GetRequestIDFromGinContext(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(requestIDContextKey)
	if !exists {
		return "", false
	}
	requestID, ok := value.(string)
	return requestID, ok
}
