package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/handlers"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/middleware"
	"github.com/windoze95/saltybytes-chef/internal/repository"
	"github.com/windoze95/saltybytes-chef/internal/service"
)

var defaultAllowedOrigins = []string{
	"https://api.saltybytes.ai",
	"https://www.api.saltybytes.ai",
	"https://saltybytes.ai",
	"https://www.saltybytes.ai",
}

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, chefRepo repository.ChefRepo, suggestions *service.SuggestionService) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = defaultAllowedOrigins
	if len(cfg.EnvVars.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.EnvVars.AllowedOrigins
	}
	corsConfig.AddAllowHeaders("Authorization", logger.RequestIDHeader)
	corsConfig.AddExposeHeaders(logger.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Chef-related routes setup
	chefService := service.NewChefService(chefRepo, suggestions, cfg.Prompts)
	chefHandler := handlers.NewChefHandler(cfg, chefService, suggestions, suggestions.Configured)

	// Suggestion calls are expensive; limit them per user on top of the
	// per-IP limit on the whole group.
	suggestLimit := middleware.RateLimitByUser(cfg.EnvVars.SuggestRate, cfg.EnvVars.SuggestBurst, 5*time.Minute, 30*time.Minute)

	// Group for API routes that require token verification
	apiProtected := r.Group("/v1/chef")
	{
		apiProtected.Use(middleware.RateLimitByIP(20, 5*time.Minute, 30*time.Minute))
		apiProtected.Use(middleware.VerifyTokenMiddleware(cfg))

		// Stateless suggestion
		apiProtected.POST("/suggest", suggestLimit, chefHandler.Suggest)

		// Chat history and latest draft
		apiProtected.GET("", chefHandler.GetChat)
		// Send a chat message and receive a draft
		apiProtected.POST("/messages", suggestLimit, chefHandler.SendMessage)
		// Publish a draft as a recipe
		apiProtected.POST("/drafts/:draft_id/publish", chefHandler.PublishDraft)
		// Clear the chat and unpublished drafts
		apiProtected.POST("/clear", chefHandler.ClearChat)

		// Timing diagnostics, debug builds only
		apiProtected.GET("/diagnostic", middleware.RequireDebug(cfg), chefHandler.DiagnosticInfo)
		apiProtected.POST("/diagnostic", middleware.RequireDebug(cfg), suggestLimit, chefHandler.Diagnostic)
	}

	return r
}
