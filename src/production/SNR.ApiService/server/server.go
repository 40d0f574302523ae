package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/controllers"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/health"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/middleware"
	config "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Config"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	SensorRepo    interfaces.SensorRepository
	HealthChecker *health.HealthChecker
}

// NewRouter builds the gin engine with middleware and every controller registered
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger.WithComponent("http")))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(deps.Config.CORS)))

	sensorController := controllers.NewSensorController(deps.SensorRepo, deps.Logger)
	healthController := controllers.NewHealthController(deps.HealthChecker, deps.Metrics, deps.Logger)

	sensorController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	return router
}

// NewHTTPServer wraps handler in an http.Server with the configured timeouts
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// Endpoints returns "METHOD /path" for every registered route, sorted by path
func Endpoints(router *gin.Engine) []string {
	routes := router.Routes()
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	endpoints := make([]string, 0, len(routes))
	for _, r := range routes {
		endpoints = append(endpoints, r.Method+" "+r.Path)
	}
	return endpoints
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: cfg.ExposedHeaders,
		MaxAge:        time.Duration(cfg.MaxAge) * time.Second,
	}
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
