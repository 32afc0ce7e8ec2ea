package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/services"
	"cmms-system/pkg/utils"
)

type TwinController struct {
	twinService services.TwinServiceInterface
	logger      *zap.Logger
}

func NewTwinController(service services.TwinServiceInterface, logger *zap.Logger) *TwinController {
	return &TwinController{twinService: service, logger: logger}
}

func (c *TwinController) GetTwin(ctx echo.Context) error {
	res, err := c.twinService.GetTwin(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Цифровой двойник успешно получен", http.StatusOK)
}

func (c *TwinController) GetTwinNode(ctx echo.Context) error {
	assetID, err := utils.ParseIDParam(ctx, "asset_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.twinService.GetTwinNode(ctx.Request().Context(), assetID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Узел двойника успешно получен", http.StatusOK)
}
