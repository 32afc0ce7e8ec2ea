package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runSettingsRouter(secureGroup *echo.Group, settingsService services.SettingsServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	settingsCtrl := controllers.NewSettingsController(settingsService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)
	{
		secureGroup.GET("/settings", settingsCtrl.GetSettings)
		secureGroup.PUT("/settings", settingsCtrl.UpdateSettings, authMW.RequireRole(middleware.RoleAdmin))
		secureGroup.GET("/settings/postal/:cep", settingsCtrl.LookupPostalCode, manager)
		secureGroup.POST("/settings/postal", settingsCtrl.ApplyPostalCode, authMW.RequireRole(middleware.RoleAdmin))
	}
}
