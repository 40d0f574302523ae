package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
)

// Metrics records request count and duration per route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := routeLabel(ctx)
		method := ctx.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
