package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
)

// RequestLogger writes one structured line per request. Server errors log at
// error level, client errors at warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		reqLog := log
		if requestID, ok := GetRequestIDFromGinContext(ctx); ok {
			reqLog = log.WithRequestID(requestID)
		}

		status := ctx.Writer.Status()
		event := reqLog.Logger.Info()
		switch {
		case status >= 500:
			event = reqLog.Logger.Error()
		case status >= 400:
			event = reqLog.Logger.Warn()
		}

		if len(ctx.Errors) > 0 {
			event = event.Str("errors", ctx.Errors.String())
		}

		event.
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Str("route", routeLabel(ctx)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", ctx.ClientIP()).
			Msg("HTTP request")
	}
}

// routeLabel returns the matched route template, keeping label cardinality
// bounded for ids in the path.
func routeLabel(ctx *gin.Context) string {
	if route := ctx.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
