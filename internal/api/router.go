// Package api exposes the scenario pipeline and the run archive over HTTP.
package api

import (
	"net/http"

	"energy-expansion/internal/api/handlers"
	"energy-expansion/internal/api/middleware"
	"energy-expansion/internal/config"
	"energy-expansion/internal/pipeline"
	"energy-expansion/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"
)

// Deps are the collaborators of the router. Gatherer defaults to the
// prometheus default registry.
type Deps struct {
	Config      *config.Config
	Runner      *pipeline.Runner
	Store       store.Store
	Gatherer    prometheus.Gatherer
	JWTSecret   []byte
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	router := gin.New()
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	scenarioHandler := handlers.NewScenarioHandler(d.Config, d.Runner)
	runHandler := handlers.NewRunHandler(d.Store)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1", middleware.Auth(d.JWTSecret))
	{
		v1.GET("/scenarios", scenarioHandler.ListScenarios)
		v1.POST("/scenarios/:name/run", scenarioHandler.RunScenario)

		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)
		v1.GET("/runs/:id/export", runHandler.ExportRun)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
