package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"planner/internal/handler"
	"planner/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	WizardHandler *handler.WizardHandler
	PlanHandler   *handler.PlanHandler
	RedisClient   redis.Cmdable
	NewRelicApp   *newrelic.Application
	Gatherer      prometheus.Gatherer
	CORSOrigins   []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.CORSOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Wizard routes.
		sessions := v1.Group("/wizard/sessions")
		{
			sessions.POST("", deps.WizardHandler.Open)
			sessions.GET("/:id", deps.WizardHandler.Get)
			sessions.DELETE("/:id", deps.WizardHandler.Clear)
			sessions.PATCH("/:id/draft", deps.WizardHandler.UpdateDraft)
			sessions.PUT("/:id/preferences/:preference", deps.WizardHandler.UpdatePreference)
			sessions.POST("/:id/next", deps.WizardHandler.Next)
			sessions.POST("/:id/back", deps.WizardHandler.Back)
			sessions.POST("/:id/edit", deps.WizardHandler.Edit)
			sessions.POST("/:id/save", deps.WizardHandler.Save)
			sessions.POST("/:id/generate", deps.WizardHandler.Generate)
			sessions.POST("/:id/notices/dismiss", deps.WizardHandler.DismissNotice)
			sessions.GET("/:id/processing", deps.WizardHandler.Processing)
			sessions.GET("/:id/plans", deps.PlanHandler.ListSessionPlans)
		}

		// Plan routes.
		plans := v1.Group("/plans")
		{
			plans.GET("/:id", deps.PlanHandler.GetPlan)
		}
	}

	return router
}
