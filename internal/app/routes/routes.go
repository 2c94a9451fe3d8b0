package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/controllers"
	"github.com/RUFFNER25/sistema-de-certificados/internal/middleware"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/ratelimit"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	certificateController *controllers.CertificateController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *ratelimit.SlidingWindowLimiter,
	m *metrics.Metrics,
	filesURLPrefix string,
	storagePath string,
) {
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/login", middleware.LoginRateLimit(loginLimiter, m), authController.Login)

		certificados := api.Group("/certificados")
		{
			// Public listing; a valid token lifts the default row cap.
			certificados.GET("", authMiddleware.OptionalAuth(), certificateController.List)

			certificados.POST("", authMiddleware.JWTAuth(), certificateController.Create)
			certificados.PUT("/:id", authMiddleware.JWTAuth(), certificateController.Update)
			certificados.DELETE("/:id", authMiddleware.JWTAuth(), certificateController.Delete)
		}
	}

	// Stored certificate files, served read-only.
	router.Static(filesURLPrefix, storagePath)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
