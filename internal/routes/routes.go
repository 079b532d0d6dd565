package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catering-operations-backend/internal/config"
	handler "catering-operations-backend/internal/handlers"
	"catering-operations-backend/internal/repository"
	"catering-operations-backend/internal/services/ingest"
	"catering-operations-backend/internal/services/sharepoint"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	logger := config.GetLogger()

	saleRepo := repository.NewSaleRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	importRepo := repository.NewDataImportRepository(db)

	ingestService := ingest.NewService(saleRepo, inventoryRepo, importRepo, logger)

	sharepointClient, err := sharepoint.NewClient()
	if err != nil {
		log.Fatalf("invalid SharePoint configuration: %v", err)
	}
	var fetcher sharepoint.DocumentFetcher
	if sharepointClient != nil {
		fetcher = sharepointClient
	}
	sharepointService := sharepoint.NewService(fetcher, ingestService, logger)

	importHandler := handler.NewImportHandler(ingestService, sharepointService)
	inventoryHandler := handler.NewInventoryHandler(inventoryRepo)
	salesHandler := handler.NewSalesHandler(saleRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Data import pipeline routes
	dataImport := api.Group("/data-import")
	dataImport.POST("/upload", importHandler.Upload)
	dataImport.GET("/history", importHandler.History)
	dataImport.POST("/sharepoint/sync", importHandler.SyncAll)
	dataImport.POST("/sharepoint/sync/:source", importHandler.SyncSource)
	dataImport.GET("/sharepoint/status", importHandler.SyncStatus)

	// Sales read-only routes
	api.GET("/sales", salesHandler.List)

	// Inventory routes
	inventory := api.Group("/inventory")
	{
		inventory.GET("", inventoryHandler.List)
		inventory.GET("/alerts/low-stock", inventoryHandler.LowStock)
		inventory.GET("/:id", inventoryHandler.Get)
		inventory.POST("", inventoryHandler.Create)
		inventory.PATCH("/:id", inventoryHandler.Update)
		inventory.DELETE("/:id", inventoryHandler.Delete)
	}
}
