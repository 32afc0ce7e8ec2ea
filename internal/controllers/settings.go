package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	"cmms-system/pkg/utils"
)

type SettingsController struct {
	settingsService services.SettingsServiceInterface
	logger          *zap.Logger
}

func NewSettingsController(service services.SettingsServiceInterface, logger *zap.Logger) *SettingsController {
	return &SettingsController{settingsService: service, logger: logger}
}

func (c *SettingsController) GetSettings(ctx echo.Context) error {
	res, err := c.settingsService.GetSettings(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Настройки успешно получены", http.StatusOK)
}

func (c *SettingsController) UpdateSettings(ctx echo.Context) error {
	var payload dto.UpdateSettingsDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("UpdateSettings: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.settingsService.UpdateSettings(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Настройки успешно сохранены", http.StatusOK)
}

func (c *SettingsController) LookupPostalCode(ctx echo.Context) error {
	res, err := c.settingsService.LookupPostalCode(ctx.Request().Context(), ctx.Param("cep"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Адрес найден", http.StatusOK)
}

func (c *SettingsController) ApplyPostalCode(ctx echo.Context) error {
	var payload dto.ApplyPostalCodeDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.settingsService.ApplyPostalCode(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Адрес компании обновлён", http.StatusOK)
}
