package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runAnalyticsRouter(secureGroup *echo.Group, analyticsService services.AnalyticsServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	analyticsCtrl := controllers.NewAnalyticsController(analyticsService, logger)
	{
		secureGroup.GET("/analytics/dashboard", analyticsCtrl.GetDashboard)
		secureGroup.POST("/analytics/insights", analyticsCtrl.GetInsights, authMW.RequireRole(middleware.RoleManager))
		secureGroup.GET("/reports/tickets", analyticsCtrl.ExportTicketsReport, authMW.RequireRole(middleware.RoleManager))
	}
}
