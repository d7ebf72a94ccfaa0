package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FredrikM97/grocery-scan-card/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scan := v1.Group("/scan")
		{
			scan.POST("/open", handler.OpenScan)
			scan.POST("/close", handler.CloseScan)
			scan.GET("/state", handler.ScanState)
			scan.POST("/detections", handler.PostDetection)
			scan.PUT("/draft", handler.UpdateDraft)
			scan.POST("/confirm", handler.ConfirmScan)
			scan.POST("/camera", handler.SelectCamera)
			scan.GET("/cameras", handler.ListCameras)
		}

		list := v1.Group("/list")
		{
			list.GET("/items", handler.GetListItems)
			list.POST("/items", handler.AddListItem)
			list.POST("/items/:id/toggle", handler.ToggleListItem)
			list.DELETE("/items/:id", handler.DeleteListItem)
			list.POST("/clear-completed", handler.ClearCompleted)
		}

		v1.GET("/products/:barcode", handler.GetProduct)
		v1.GET("/suggestions", handler.GetSuggestions)
	}

	return router
}
