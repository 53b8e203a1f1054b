package routes

import (
	"net/http"

	"rentshare_backend/internal/handlers"
	"rentshare_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// Options tune the non-API routes.
type Options struct {
	// MediaDir is served under MediaURL when photos live on the local filesystem.
	MediaDir string
	MediaURL string
}

// RegisterRoutes mounts the health check, local media and the /api/v1 API.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, opts Options) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.MediaDir != "" && opts.MediaURL != "" {
		ginRouter.Static(opts.MediaURL, opts.MediaDir)
		logger.Info("Serving local media", "dir", opts.MediaDir, "url", opts.MediaURL)
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.ListingHandler.RegisterRoutes(api)
		appHandlers.OfferHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.TransactionHandler.RegisterRoutes(api)
	}
}
