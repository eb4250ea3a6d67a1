package httpapi

import (
	"context"
	"net/http"

	"recruit-automation/internal/common/logger"
	"recruit-automation/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter mounts the editor API, health probes and the metrics endpoint.
func NewRouter(h *Handler, log logger.Logger, deps map[string]Pinger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger.ForComponent(log, "http")))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/ready", readiness(deps))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/automations", h.ListRules)
		api.POST("/automations", h.CreateRule)
		api.POST("/automations/validate", h.ValidateRule)
		api.POST("/automations/preview", h.Preview)
		api.POST("/automations/variables", h.Variables)
		api.GET("/automations/:id", h.GetRule)
		api.PUT("/automations/:id", h.UpdateRule)
		api.DELETE("/automations/:id", h.DeleteRule)
		api.POST("/automations/:id/toggle", h.ToggleRule)

		api.GET("/variables", h.Catalog)
		api.GET("/triggers", h.Triggers)
		api.GET("/templates", h.Templates)
		api.POST("/events", h.FireEvent)
		api.POST("/cache/refresh", h.RefreshCache)
	}
	return router
}

func readiness(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := make(map[string]string, len(deps))
		ready := true
		for name, dep := range deps {
			if err := dep.Ping(c.Request.Context()); err != nil {
				status[name] = err.Error()
				ready = false
				continue
			}
			status[name] = "ok"
		}
		if !ready {
			c.JSON(http.StatusServiceUnavailable, response.Body{Success: false, Data: status})
			return
		}
		response.OK(c, status)
	}
}
