package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runInventoryRouter(secureGroup *echo.Group, inventoryService services.InventoryServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	inventoryCtrl := controllers.NewInventoryController(inventoryService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)

	parts := secureGroup.Group("/inventory")
	{
		parts.GET("", inventoryCtrl.GetParts)
		parts.GET("/low_stock", inventoryCtrl.GetLowStock)
		parts.GET("/export", inventoryCtrl.ExportParts)
		parts.POST("/import", inventoryCtrl.ImportParts, manager)
		parts.GET("/:id", inventoryCtrl.FindPart)
		parts.GET("/:id/movements", inventoryCtrl.GetMovements)
		parts.POST("", inventoryCtrl.CreatePart, manager)
		parts.PUT("/:id", inventoryCtrl.UpdatePart, manager)
		parts.DELETE("/:id", inventoryCtrl.DeletePart, manager)
		parts.POST("/:id/adjust", inventoryCtrl.AdjustStock, manager)
	}
}
