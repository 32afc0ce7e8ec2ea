package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
)

func runTicketRouter(secureGroup *echo.Group, ticketService services.TicketServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware, once echo.MiddlewareFunc) {
	ticketCtrl := controllers.NewTicketController(ticketService, logger)
	manager := authMW.RequireRole(middleware.RoleManager)
	// статус и расход запчастей доступны и исполнителям
	field := authMW.RequireRole(middleware.RoleManager, middleware.RoleTechnician)
	{
		secureGroup.GET("/tickets", ticketCtrl.GetTickets)
		secureGroup.GET("/tickets/:id", ticketCtrl.FindTicket)
		secureGroup.POST("/tickets", ticketCtrl.CreateTicket, manager, once)
		secureGroup.PUT("/tickets/:id", ticketCtrl.UpdateTicket, manager)
		secureGroup.DELETE("/tickets/:id", ticketCtrl.DeleteTicket, manager)
		secureGroup.PUT("/tickets/:id/status", ticketCtrl.ChangeStatus, field)
		secureGroup.POST("/tickets/:id/parts", ticketCtrl.ConsumeParts, field)
		secureGroup.POST("/tickets/:id/diagnose", ticketCtrl.Diagnose, field)
	}
}
