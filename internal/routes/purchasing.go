package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runPurchasingRouter(secureGroup *echo.Group, purchasingService services.PurchasingServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	purchasingCtrl := controllers.NewPurchasingController(purchasingService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)

	purchasing := secureGroup.Group("/purchasing", manager)
	{
		purchasing.GET("/suggestion", purchasingCtrl.GetRestockSuggestion)
		purchasing.GET("/requisitions", purchasingCtrl.GetRequisitions)
		purchasing.GET("/requisitions/:id", purchasingCtrl.FindRequisition)
		purchasing.POST("/requisitions", purchasingCtrl.CreateRequisition)
		purchasing.PUT("/requisitions/:id/status", purchasingCtrl.ChangeStatus)
	}
}
