package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	"cmms-system/pkg/utils"
)

type AssetController struct {
	assetService services.AssetServiceInterface
	logger       *zap.Logger
}

func NewAssetController(service services.AssetServiceInterface, logger *zap.Logger) *AssetController {
	return &AssetController{assetService: service, logger: logger}
}

func (c *AssetController) GetAssets(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.assetService.GetAssets(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetAssets: ошибка при получении списка активов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список активов успешно получен", http.StatusOK, total)
}

func (c *AssetController) GetTree(ctx echo.Context) error {
	res, err := c.assetService.GetTree(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetTree: ошибка построения иерархии", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Иерархия активов успешно получена", http.StatusOK)
}

func (c *AssetController) FindAsset(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.FindAsset(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Актив успешно найден", http.StatusOK)
}

func (c *AssetController) GetHistory(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.assetService.GetHistory(ctx.Request().Context(), id, filter)
	if err != nil {
		c.logger.Error("GetHistory: ошибка при получении истории актива", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "История обслуживания успешно получена", http.StatusOK, total)
}

func (c *AssetController) CreateAsset(ctx echo.Context) error {
	var payload dto.CreateAssetDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreateAsset: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.CreateAsset(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Актив успешно создан", http.StatusCreated)
}

func (c *AssetController) UpdateAsset(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateAssetDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("UpdateAsset: некорректные данные", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.UpdateAsset(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Актив успешно обновлён", http.StatusOK)
}

func (c *AssetController) DeleteAsset(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.assetService.DeleteAsset(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Актив успешно удалён", http.StatusOK)
}
