package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runPreventiveRouter(secureGroup *echo.Group, preventiveService services.PreventiveServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware, once echo.MiddlewareFunc) {
	planCtrl := controllers.NewPreventiveController(preventiveService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)

	plans := secureGroup.Group("/preventive")
	{
		plans.GET("", planCtrl.GetPlans)
		plans.GET("/upcoming", planCtrl.GetUpcoming)
		plans.GET("/overdue", planCtrl.GetOverdue)
		plans.GET("/:id", planCtrl.FindPlan)
		plans.POST("", planCtrl.CreatePlan, manager)
		plans.PUT("/:id", planCtrl.UpdatePlan, manager)
		plans.DELETE("/:id", planCtrl.DeletePlan, manager)
		plans.POST("/:id/pause", planCtrl.PausePlan, manager)
		plans.POST("/:id/resume", planCtrl.ResumePlan, manager)
		plans.POST("/:id/execute", planCtrl.ExecutePlan, manager, once)
		plans.POST("/suggest/:asset_id", planCtrl.SuggestPlans, manager)
	}
}
