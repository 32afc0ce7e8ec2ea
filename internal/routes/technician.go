package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runTechnicianRouter(secureGroup *echo.Group, technicianService services.TechnicianServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	technicianCtrl := controllers.NewTechnicianController(technicianService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)
	{
		secureGroup.GET("/technicians", technicianCtrl.GetTechnicians)
		secureGroup.GET("/technicians/workload", technicianCtrl.GetWorkload)
		secureGroup.GET("/technicians/:id", technicianCtrl.FindTechnician)
		secureGroup.POST("/technicians", technicianCtrl.CreateTechnician, manager)
		secureGroup.PUT("/technicians/:id", technicianCtrl.UpdateTechnician, manager)
		secureGroup.DELETE("/technicians/:id", technicianCtrl.DeleteTechnician, manager)
	}
}
