package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
)

const defaultUpcomingDays = 30

type PreventiveController struct {
	preventiveService services.PreventiveServiceInterface
	logger            *zap.Logger
}

func NewPreventiveController(service services.PreventiveServiceInterface, logger *zap.Logger) *PreventiveController {
	return &PreventiveController{preventiveService: service, logger: logger}
}

func (c *PreventiveController) GetPlans(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.preventiveService.GetPlans(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetPlans: ошибка при получении планов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список планов успешно получен", http.StatusOK, total)
}

func (c *PreventiveController) FindPlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.FindPlan(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "План успешно найден", http.StatusOK)
}

func (c *PreventiveController) GetUpcoming(ctx echo.Context) error {
	days := defaultUpcomingDays
	if raw := ctx.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Параметр days должен быть от 1 до 365"), c.logger)
		}
		days = n
	}

	res, err := c.preventiveService.GetUpcoming(ctx.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Ближайшие работы успешно получены", http.StatusOK)
}

func (c *PreventiveController) GetOverdue(ctx echo.Context) error {
	res, err := c.preventiveService.GetOverdue(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Просроченные планы успешно получены", http.StatusOK)
}

func (c *PreventiveController) CreatePlan(ctx echo.Context) error {
	var payload dto.CreatePlanDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreatePlan: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.CreatePlan(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "План успешно создан", http.StatusCreated)
}

func (c *PreventiveController) UpdatePlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdatePlanDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.UpdatePlan(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "План успешно обновлён", http.StatusOK)
}

func (c *PreventiveController) DeletePlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.preventiveService.DeletePlan(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "План успешно удалён", http.StatusOK)
}

func (c *PreventiveController) PausePlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.PausePlan(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "План приостановлен", http.StatusOK)
}

func (c *PreventiveController) ResumePlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.ResumePlan(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "План возобновлён", http.StatusOK)
}

func (c *PreventiveController) ExecutePlan(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.ExecutePlan(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Создана заявка на профилактику", http.StatusCreated)
}

func (c *PreventiveController) SuggestPlans(ctx echo.Context) error {
	assetID, err := utils.ParseIDParam(ctx, "asset_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.preventiveService.SuggestPlans(ctx.Request().Context(), assetID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Предложения по планам подготовлены", http.StatusOK)
}
