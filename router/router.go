// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/controlroom-hq/control-room/api/controller"
	"github.com/controlroom-hq/control-room/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhook deliveries authenticate via signature, not bearer token.
	public := router.Group("/")
	controllers.Webhook.RegisterRoutes(public)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())

	controllers.Policy.RegisterRoutes(api)
	controllers.Workspace.RegisterRoutes(api)
	controllers.Agent.RegisterRoutes(api)
	controllers.Onboarding.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
