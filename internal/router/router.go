package router

import (
	"github.com/gin-gonic/gin"

	"gstrecon/internal/handler"
	"gstrecon/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	sessionH *handler.SessionHandler,
	reconH *handler.ReconHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Session lifecycle
	sessions := v1.Group("/sessions")
	sessions.POST("", sessionH.Create)
	sessions.GET("/:id", sessionH.Get)
	sessions.GET("/:id/progress", sessionH.Progress)
	sessions.DELETE("/:id", sessionH.Delete)

	// Reconciliation workflow
	sessions.POST("/:id/invoices", reconH.LoadExtraction)
	sessions.POST("/:id/statement", reconH.LoadStatement)
	sessions.POST("/:id/reconcile", reconH.Reconcile)
	sessions.GET("/:id/result", reconH.Result)
	sessions.GET("/:id/export", exportH.Export)

	// Archived run history
	v1.GET("/runs", reconH.ListRuns)

	return r
}
