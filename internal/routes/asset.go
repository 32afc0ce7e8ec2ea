package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runAssetRouter(secureGroup *echo.Group, assetService services.AssetServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	assetCtrl := controllers.NewAssetController(assetService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)
	{
		secureGroup.GET("/assets", assetCtrl.GetAssets)
		secureGroup.GET("/assets/tree", assetCtrl.GetTree)
		secureGroup.GET("/assets/:id", assetCtrl.FindAsset)
		secureGroup.GET("/assets/:id/history", assetCtrl.GetHistory)
		secureGroup.POST("/assets", assetCtrl.CreateAsset, manager)
		secureGroup.PUT("/assets/:id", assetCtrl.UpdateAsset, manager)
		secureGroup.DELETE("/assets/:id", assetCtrl.DeleteAsset, manager)
	}
}
