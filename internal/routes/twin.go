package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
)

func runTwinRouter(secureGroup *echo.Group, twinService services.TwinServiceInterface, logger *zap.Logger) {
	twinCtrl := controllers.NewTwinController(twinService, logger)
	{
		secureGroup.GET("/twin", twinCtrl.GetTwin)
		secureGroup.GET("/twin/:asset_id", twinCtrl.GetTwinNode)
	}
}
