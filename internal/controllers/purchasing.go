package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	"cmms-system/pkg/utils"
)

type PurchasingController struct {
	purchasingService services.PurchasingServiceInterface
	logger            *zap.Logger
}

func NewPurchasingController(service services.PurchasingServiceInterface, logger *zap.Logger) *PurchasingController {
	return &PurchasingController{purchasingService: service, logger: logger}
}

// GetRestockSuggestion принимает необязательный ?part_ids=1,2,3.
func (c *PurchasingController) GetRestockSuggestion(ctx echo.Context) error {
	ids, err := parseIDList(ctx.QueryParam("part_ids"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.purchasingService.GetRestockSuggestion(ctx.Request().Context(), ids)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Предложение по пополнению сформировано", http.StatusOK)
}

func (c *PurchasingController) GetRequisitions(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.purchasingService.GetRequisitions(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список закупок успешно получен", http.StatusOK, total)
}

func (c *PurchasingController) FindRequisition(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.purchasingService.FindRequisition(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Закупка успешно найдена", http.StatusOK)
}

func (c *PurchasingController) CreateRequisition(ctx echo.Context) error {
	var payload dto.CreateRequisitionDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreateRequisition: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.purchasingService.CreateRequisition(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка на закупку создана", http.StatusCreated)
}

func (c *PurchasingController) ChangeStatus(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ChangeRequisitionStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.purchasingService.ChangeStatus(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус закупки изменён", http.StatusOK)
}
