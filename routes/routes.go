package routes

import (
	"time"

	"meetingroom/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAgentRoutes registers the natural-language endpoints.
func RegisterAgentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/run", hb.RunAgentHandler)

	api := r.Group("/api/agent")
	{
		api.POST("/run", hb.RunAgentHandler)
		api.GET("/runs/:id", hb.GetRunHandler)
	}
}

// RegisterActionRoutes registers direct action invocation.
func RegisterActionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/actions")
	{
		api.GET("", hb.ListActionsHandler)
		api.POST("/:name", hb.InvokeActionHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterAgentRoutes(r, hb)
	RegisterActionRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
